// Package dataset knows where the benchmark datasets live, how to fetch them
// and whether they are present on disk.
package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/faceverify/faceverify/internal/pairs"
)

var ErrUnknownDataset = errors.New("unknown dataset")

// Dataset describes one benchmark. Relative paths are resolved against the
// catalogue's root directory.
type Dataset struct {
	Name      string       `mapstructure:"name"`
	PairsFile string       `mapstructure:"pairs_file"`
	ImagesDir string       `mapstructure:"images_dir"`
	Format    pairs.Format `mapstructure:"format"`
	Dir       string       `mapstructure:"dir"`
	Mirrors   []string     `mapstructure:"mirrors"`
	PairsURL  string       `mapstructure:"pairs_url"`
}

type catalogFile struct {
	Root     string    `mapstructure:"root"`
	Datasets []Dataset `mapstructure:"datasets"`
}

// Catalog is the set of known datasets
type Catalog struct {
	Root     string
	datasets map[string]Dataset
}

func defaultDatasets() []Dataset {
	return []Dataset{
		{
			Name:      "lfw",
			Dir:       "lfw",
			PairsFile: "lfw/pairs.txt",
			ImagesDir: "lfw",
			Format:    pairs.FormatLFW,
			Mirrors: []string{
				"http://vis-www.cs.umass.edu/lfw/lfw.tgz",
				"https://ndownloader.figshare.com/files/5976018",
			},
			PairsURL: "http://vis-www.cs.umass.edu/lfw/pairs.txt",
		},
		{
			Name:      "calfw",
			Dir:       "calfw",
			PairsFile: "calfw/pairs_CALFW.txt",
			ImagesDir: "calfw/aligned images",
			Format:    pairs.FormatLabelled,
		},
		{
			Name:      "cplfw",
			Dir:       "cplfw",
			PairsFile: "cplfw/pairs_CPLFW.txt",
			ImagesDir: "cplfw/aligned images",
			Format:    pairs.FormatLabelled,
		},
	}
}

// LoadCatalog reads the catalogue from configPath (YAML, JSON or TOML). An
// empty configPath yields the built-in LFW/CALFW/CPLFW entries.
// FACEVERIFY_DATASETS_ROOT overrides the root directory.
func LoadCatalog(configPath string) (*Catalog, error) {
	v := viper.New()
	v.SetDefault("root", "datasets")
	v.SetEnvPrefix("FACEVERIFY_DATASETS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read dataset catalogue: %w", err)
		}
	}

	var file catalogFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("decode dataset catalogue: %w", err)
	}

	if len(file.Datasets) == 0 {
		file.Datasets = defaultDatasets()
	}

	return NewCatalog(file.Root, file.Datasets)
}

// NewCatalog validates entries and resolves their paths under root
func NewCatalog(root string, entries []Dataset) (*Catalog, error) {
	c := &Catalog{Root: root, datasets: make(map[string]Dataset, len(entries))}

	for i, d := range entries {
		d.Name = strings.ToLower(strings.TrimSpace(d.Name))
		if d.Name == "" {
			return nil, fmt.Errorf("dataset %d: name is required", i)
		}
		if _, dup := c.datasets[d.Name]; dup {
			return nil, fmt.Errorf("dataset %s: defined twice", d.Name)
		}
		format, err := pairs.ParseFormat(string(d.Format))
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", d.Name, err)
		}
		d.Format = format

		if d.Dir == "" {
			d.Dir = d.Name
		}
		d.Dir = c.resolve(d.Dir)
		d.PairsFile = c.resolve(d.PairsFile)
		d.ImagesDir = c.resolve(d.ImagesDir)

		c.datasets[d.Name] = d
	}

	return c, nil
}

func (c *Catalog) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, filepath.FromSlash(p))
}

// Get returns the named dataset
func (c *Catalog) Get(name string) (Dataset, error) {
	d, ok := c.datasets[strings.ToLower(name)]
	if !ok {
		return Dataset{}, fmt.Errorf("%w: %s", ErrUnknownDataset, name)
	}
	return d, nil
}

// All returns every dataset ordered by name
func (c *Catalog) All() []Dataset {
	all := make([]Dataset, 0, len(c.datasets))
	for _, d := range c.datasets {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}
