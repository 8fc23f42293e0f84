package loam

// TemplateMetadata is the frontmatter of a template document.
// The markdown body becomes the template description.
type TemplateMetadata struct {
	Name     string `json:"name" mapstructure:"name"`
	Title    string `json:"title" mapstructure:"title"`
	Category string `json:"category" mapstructure:"category"`
	Image    string `json:"image" mapstructure:"image"`
}
