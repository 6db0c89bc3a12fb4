package teamnames

import (
	"os"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Catalog maps team ids to a display name and the extra spellings people use
// for them in free text.
type Catalog struct {
	display map[string]string
	aliases map[string]string
}

type catalogFile struct {
	Teams []catalogTeam `yaml:"teams"`
}

type catalogTeam struct {
	ID      string   `yaml:"id"`
	Display string   `yaml:"display"`
	Aliases []string `yaml:"aliases"`
}

// Load reads a YAML catalog. An empty path yields an empty catalog.
func Load(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Empty(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, crerr.Wrapf(err, "read team catalog %s", path)
	}
	catalog, err := Parse(data)
	if err != nil {
		return nil, crerr.Wrapf(err, "parse team catalog %s", path)
	}
	return catalog, nil
}

func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, crerr.Wrap(err, "decode yaml")
	}

	catalog := Empty()
	for i, team := range file.Teams {
		id := strings.TrimSpace(team.ID)
		if id == "" {
			return nil, crerr.Newf("team entry %d has no id", i)
		}
		if display := strings.TrimSpace(team.Display); display != "" {
			catalog.display[id] = display
			catalog.addAlias(display, id)
		}
		for _, alias := range team.Aliases {
			catalog.addAlias(alias, id)
		}
	}
	return catalog, nil
}

func Empty() *Catalog {
	return &Catalog{
		display: make(map[string]string),
		aliases: make(map[string]string),
	}
}

func (c *Catalog) addAlias(alias, id string) {
	key := strings.ToLower(strings.Join(strings.Fields(alias), " "))
	if key == "" {
		return
	}
	if _, exists := c.aliases[key]; exists {
		return
	}
	c.aliases[key] = id
}

// Aliases returns lowercased alias to team id. The first entry wins when two
// teams claim the same alias.
func (c *Catalog) Aliases() map[string]string {
	if c == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(c.aliases))
	for alias, id := range c.aliases {
		out[alias] = id
	}
	return out
}

// DisplayName falls back to the id when the catalog has no entry.
func (c *Catalog) DisplayName(id string) string {
	if c == nil {
		return id
	}
	if name, ok := c.display[id]; ok {
		return name
	}
	return id
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.display)
}
