package brands

import "sort"

// Brand holds the OAuth routing for one branded build of the application.
type Brand struct {
	Realm    string
	OAuthURL string
}

var registry = map[string]Brand{
	"com.psa.mym.myopel":     {Realm: "clientsB2COpel", OAuthURL: "https://idpcvs.opel.com/am/oauth2/access_token"},
	"com.psa.mym.mypeugeot":  {Realm: "clientsB2CPeugeot", OAuthURL: "https://idpcvs.peugeot.com/am/oauth2/access_token"},
	"com.psa.mym.mycitroen":  {Realm: "clientsB2CCitroen", OAuthURL: "https://idpcvs.citroen.com/am/oauth2/access_token"},
	"com.psa.mym.myds":       {Realm: "clientsB2CDS", OAuthURL: "https://idpcvs.driveds.com/am/oauth2/access_token"},
	"com.psa.mym.myvauxhall": {Realm: "clientsB2CVauxhall", OAuthURL: "https://idpcvs.vauxhall.co.uk/am/oauth2/access_token"},
}

// Lookup returns the brand registered for a package identifier.
func Lookup(packageID string) (Brand, bool) {
	b, ok := registry[packageID]
	return b, ok
}

// Identifiers returns the known package identifiers in sorted order.
func Identifiers() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
