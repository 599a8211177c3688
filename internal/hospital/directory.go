// Package hospital holds the static A&E hospital reference table and
// implements domain.MetadataLookup over it.
package hospital

import (
	_ "embed"
	"fmt"
	"maps"
	"net/url"
	"os"
	"strings"

	"github.com/couchcryptid/ae-wait-service/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed hospitals.yaml
var embeddedTable []byte

// DefaultPhoneDisplay is shown when the table has no number for a hospital.
const DefaultPhoneDisplay = "Contact HA for phone number"

const mapsSearchURL = "https://www.google.com/maps/search/?api=1&query="

type table struct {
	Hospitals []entry `yaml:"hospitals"`
}

type entry struct {
	Name     string                  `yaml:"name"`
	Cluster  string                  `yaml:"cluster"`
	District string                  `yaml:"district"`
	Address  string                  `yaml:"address"`
	Phone    string                  `yaml:"phone"`
	Location *domain.Coordinate      `yaml:"location"`
	ZhHK     *domain.LocalizedDetails `yaml:"zh-HK"`
}

// Directory maps normalized hospital names to their details.
type Directory struct {
	byKey map[string]domain.HospitalDetails
	names []string
}

// Default loads the table compiled into the binary.
func Default() (*Directory, error) {
	return Parse(embeddedTable)
}

// LoadFile loads a table from a YAML file on disk.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hospital table: %w", err)
	}
	return Parse(data)
}

// Parse builds a Directory from YAML. Names must be unique after
// normalization.
func Parse(data []byte) (*Directory, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse hospital table: %w", err)
	}

	d := &Directory{byKey: make(map[string]domain.HospitalDetails, len(t.Hospitals))}
	for i, e := range t.Hospitals {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("hospital table entry %d: name is required", i)
		}
		key := Key(e.Name)
		if _, dup := d.byKey[key]; dup {
			return nil, fmt.Errorf("hospital table: duplicate name %q", e.Name)
		}
		d.byKey[key] = e.details()
		d.names = append(d.names, e.Name)
	}
	return d, nil
}

// Key normalizes a hospital name for lookup: case-folded, periods dropped,
// whitespace collapsed.
func Key(name string) string {
	name = strings.ReplaceAll(strings.ToLower(name), ".", "")
	return strings.Join(strings.Fields(name), " ")
}

// Lookup returns the details for name, or a default record in the "Other"
// cluster when the name is unknown.
func (d *Directory) Lookup(name string) domain.HospitalDetails {
	details, ok := d.byKey[Key(name)]
	if !ok {
		return defaultDetails(name)
	}
	details.Localized = maps.Clone(details.Localized)
	if details.Location != nil {
		loc := *details.Location
		details.Location = &loc
	}
	return details
}

// Names lists the canonical hospital names in table order.
func (d *Directory) Names() []string {
	return append([]string(nil), d.names...)
}

// Len is the number of hospitals in the table.
func (d *Directory) Len() int {
	return len(d.names)
}

func (e entry) details() domain.HospitalDetails {
	details := domain.HospitalDetails{
		Cluster:  e.Cluster,
		District: e.District,
		Address:  e.Address,
		Location: e.Location,
		Phone:    phone(e.Phone),
		MapsURL:  MapsURL(e.Name),
	}
	if details.Cluster == "" {
		details.Cluster = domain.OtherCluster
	}
	if e.Location != nil {
		details.LocationSource = domain.LocationFromDirectory
	}
	if e.ZhHK != nil {
		details.Localized = map[domain.Language]domain.LocalizedDetails{domain.LanguageZhHK: *e.ZhHK}
	}
	return details
}

func defaultDetails(name string) domain.HospitalDetails {
	return domain.HospitalDetails{
		Cluster: domain.OtherCluster,
		Phone:   phone(""),
		MapsURL: MapsURL(name),
	}
}

func phone(number string) domain.Phone {
	number = strings.TrimSpace(number)
	if number == "" {
		return domain.Phone{Display: DefaultPhoneDisplay}
	}
	href := "tel:" + strings.ReplaceAll(number, " ", "")
	return domain.Phone{Display: number, DialHref: &href}
}

// MapsURL builds a map search link for a hospital.
func MapsURL(name string) string {
	return mapsSearchURL + url.PathEscape(strings.TrimSpace(name)+", Hong Kong")
}
