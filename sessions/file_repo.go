package sessions

import (
	"io/fs"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// FileRepo keeps the session in a YAML file. Save overwrites the file in
// place.
type FileRepo struct {
	path string
}

var _ Repo = (*FileRepo)(nil)

// NewFileRepo returns a repo backed by the file at path.
func NewFileRepo(path string) *FileRepo {
	return &FileRepo{path: path}
}

// Load reads the session. A missing file yields an empty session.
func (r *FileRepo) Load() (*State, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", r.path).Msg("No stored session, starting empty")
		return &State{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[FileRepo.Load] read %s", r.path)
	}
	state := &State{}
	if err := yaml.Unmarshal(data, state); err != nil {
		return nil, errors.Wrapf(err, "[FileRepo.Load] decode %s", r.path)
	}
	return state, nil
}

// Save writes the session readable by the owner only.
func (r *FileRepo) Save(state *State) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "[FileRepo.Save] encode")
	}
	// holds the client secret, key and tokens
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return errors.Wrapf(err, "[FileRepo.Save] write %s", r.path)
	}
	log.Debug().Str("path", r.path).Msg("Session persisted")
	return nil
}
