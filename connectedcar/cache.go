package connectedcar

import (
	"io/fs"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// VehicleCache keeps the vehicle list in a YAML file so listing the
// vehicles is needed only once.
type VehicleCache struct {
	path string
}

func NewVehicleCache(path string) *VehicleCache {
	return &VehicleCache{path: path}
}

// Load returns the cached list. ok is false when nothing usable is cached.
func (c *VehicleCache) Load() (list VehiclesList, ok bool, err error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return VehiclesList{}, false, nil
	}
	if err != nil {
		return VehiclesList{}, false, errors.Wrapf(err, "[VehicleCache.Load] read %s", c.path)
	}
	if err := yaml.Unmarshal(data, &list); err != nil {
		return VehiclesList{}, false, nil
	}
	return list, len(list.Vehicles) > 0, nil
}

func (c *VehicleCache) Save(list VehiclesList) error {
	data, err := yaml.Marshal(list)
	if err != nil {
		return errors.Wrap(err, "[VehicleCache.Save] encode")
	}
	return errors.Wrapf(os.WriteFile(c.path, data, 0o600), "[VehicleCache.Save] write %s", c.path)
}
