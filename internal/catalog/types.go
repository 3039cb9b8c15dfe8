package catalog

// Category classifies a tool by the guide section it belongs to.
type Category int

const (
	CategoryOther Category = iota
	CategoryDevelopment
	CategoryDatabase
	CategoryAuth
	CategoryDeployment
	CategoryTerminal
	CategoryAPI
)

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case CategoryDevelopment:
		return "development"
	case CategoryDatabase:
		return "database"
	case CategoryAuth:
		return "auth"
	case CategoryDeployment:
		return "deployment"
	case CategoryTerminal:
		return "terminal"
	case CategoryAPI:
		return "api"
	default:
		return "other"
	}
}

// MarshalText lets categories serialize as their names in JSON output.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a category name; unknown names become CategoryOther.
func (c *Category) UnmarshalText(text []byte) error {
	*c = CategoryOther
	for k := CategoryDevelopment; k <= CategoryAPI; k++ {
		if k.String() == string(text) {
			*c = k
			break
		}
	}
	return nil
}

// sectionCategories maps a normalized section title to its category.
var sectionCategories = map[string]Category{
	"development tools": CategoryDevelopment,
	"databases":         CategoryDatabase,
	"auth":              CategoryAuth,
	"deployment":        CategoryDeployment,
	"terminal":          CategoryTerminal,
	"apis":              CategoryAPI,
}

// SectionCategory returns the category for a section title. Unknown titles
// map to CategoryOther.
func SectionCategory(title string) Category {
	if c, ok := sectionCategories[Normalize(title)]; ok {
		return c
	}
	return CategoryOther
}

// Section is one group of tools in the guide, as authored.
type Section struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Tools []Tool `json:"tools" yaml:"tools"`
}

// Tool is one curated guide tool, as authored.
type Tool struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	URL         string   `json:"url" yaml:"url"`
	Tagline     string   `json:"tagline" yaml:"tagline"`
	Description string   `json:"description" yaml:"description"`
	Bullets     []string `json:"bullets" yaml:"bullets"`
}

// Entry is the flattened, searchable form of a Tool. Entries are built once
// by Build and must be treated as read-only afterwards.
type Entry struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	URL            string   `json:"url"`
	Tagline        string   `json:"tagline"`
	Description    string   `json:"description"`
	Bullets        []string `json:"bullets"`
	Section        string   `json:"section"`
	Category       Category `json:"category"`
	NormalizedName string   `json:"-"`
	SearchText     string   `json:"-"`
	Aliases        []string `json:"aliases"`
}
