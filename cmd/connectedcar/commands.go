package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-connectedcar/apk"
	"github.com/jrsteele09/go-connectedcar/connectedcar"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "connectedcar",
		Short: "Log in to the connected car API with the credentials of a brand application",
		Long: `connectedcar extracts the OAuth client and the client certificate shipped in a
brand application package, logs the operator in and queries the connected car API.

The session is kept in a YAML file and saved after every command.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.loadSession,
		PersistentPostRunE: a.saveSession,
		RunE: func(cmd *cobra.Command, _ []string) error {
			displayAppname(a.cfg.GetAppName())
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&a.sessionFile, "session", a.sessionFile, "session file")
	root.PersistentFlags().StringVar(&a.carsFile, "cars", a.carsFile, "vehicle cache file")

	root.AddCommand(
		newLocalesCmd(a),
		newExtractCmd(a),
		newLoginCmd(a),
		newTokenCmd(a),
		newVehiclesCmd(a),
		newStatusCmd(a),
	)
	return root
}

func openPackage(a *app, path string) (*apk.Archive, error) {
	if path == "" {
		return nil, usageErr("--apk is required")
	}
	return apk.Open(path, apk.WithPackageConfig(a.cfg))
}

func newLocalesCmd(a *app) *cobra.Command {
	var apkPath string
	cmd := &cobra.Command{
		Use:   "locales",
		Short: "List the locales a package ships parameters for",
		// reads the package only, the session is left alone
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			archive, err := openPackage(a, apkPath)
			if err != nil {
				return err
			}
			defer archive.Close()
			for _, locale := range archive.Locales() {
				fmt.Fprintln(cmd.OutOrStdout(), locale)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apkPath, "apk", "", "path to the application package")
	return cmd
}

func newExtractCmd(a *app) *cobra.Command {
	var apkPath, locale string
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Seed the session with the credentials of a package",
		RunE: func(cmd *cobra.Command, _ []string) error {
			archive, err := openPackage(a, apkPath)
			if err != nil {
				return err
			}
			defer archive.Close()
			if locale == "" {
				return usageErr("--locale is required, one of: %s", strings.Join(archive.Locales(), ", "))
			}
			creds, err := archive.Extract(locale)
			if err != nil {
				return err
			}
			a.state.ApplyCredentials(creds)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", creds.PackageID, creds.SiteCode, creds.Realm)
			return nil
		},
	}
	cmd.Flags().StringVar(&apkPath, "apk", "", "path to the application package")
	cmd.Flags().StringVar(&locale, "locale", "", "locale to extract, e.g. fr-FR")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Resolve the customer id with the legacy login",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requirePackage(); err != nil {
				return err
			}
			if email != "" {
				if password == "" {
					line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					if err != nil && line == "" {
						return usageErr("--password is required")
					}
					password = strings.TrimSpace(line)
				}
				a.state.SetOperator(email, password)
			}
			service, err := a.authService()
			if err != nil {
				return err
			}
			customerID, err := service.Bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), customerID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "operator email")
	cmd.Flags().StringVar(&password, "password", "", "operator password, read from stdin when empty")
	return cmd
}

func newTokenCmd(a *app) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Make sure the session holds a valid access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requirePackage(); err != nil {
				return err
			}
			service, err := a.authService()
			if err != nil {
				return err
			}
			if reset {
				if err := service.ResetTokens(); err != nil {
					return err
				}
			}
			token, err := service.EnsureValidToken(cmd.Context())
			if err != nil {
				if !reset && a.state.API.RefreshToken != "" {
					log.Warn().Msg("Refresh grant failed, retry with --reset to log in with the password grant")
				}
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"token_type": token.TokenType,
				"expiry":     token.Expiry.Format(time.RFC3339),
			})
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop cached tokens and use the password grant")
	return cmd
}

// vehicles returns the cached vehicle list, listing it from the API on a
// cache miss or when refresh is set.
func vehicles(cmd *cobra.Command, a *app, refresh bool) (connectedcar.VehiclesList, error) {
	cache := connectedcar.NewVehicleCache(a.carsFile)
	if !refresh {
		list, ok, err := cache.Load()
		if err != nil {
			return connectedcar.VehiclesList{}, err
		}
		if ok {
			return list, nil
		}
	}
	client, err := a.apiClient(cmd)
	if err != nil {
		return connectedcar.VehiclesList{}, err
	}
	page, err := client.ListVehicles(cmd.Context())
	if err != nil {
		return connectedcar.VehiclesList{}, err
	}
	if err := cache.Save(page.Embedded); err != nil {
		return connectedcar.VehiclesList{}, err
	}
	return page.Embedded, nil
}

func newVehiclesCmd(a *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "vehicles",
		Short: "List the vehicles of the operator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requirePackage(); err != nil {
				return err
			}
			list, err := vehicles(cmd, a, refresh)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list.Vehicles)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the vehicle cache")
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	var vin, id string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of a vehicle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requirePackage(); err != nil {
				return err
			}
			if (vin == "") == (id == "") {
				return usageErr("exactly one of --vin or --id is required")
			}
			if vin != "" {
				list, err := vehicles(cmd, a, false)
				if err != nil {
					return err
				}
				v, ok := list.Find(vin)
				if !ok {
					return usageErr("no vehicle with VIN %s", vin)
				}
				id = v.ID
			}
			client, err := a.apiClient(cmd)
			if err != nil {
				return err
			}
			status, err := client.GetVehicleStatus(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), status)
		},
	}
	cmd.Flags().StringVar(&vin, "vin", "", "vehicle identification number")
	cmd.Flags().StringVar(&id, "id", "", "API id of the vehicle")
	return cmd
}
