package theme

// Layout indices of the built-in template. The order follows the stock
// presentation template most decks are authored against.
const (
	LayoutTitleSlide = iota
	LayoutTitleAndContent
	LayoutSectionHeader
	LayoutTwoContent
	LayoutComparison
	LayoutTitleOnly
	LayoutBlank
	LayoutContentWithCaption
	LayoutPictureWithCaption
)

// Default returns the built-in "Edutor Corporate Blue" template, used when a
// theme's template file is missing or unreadable.
func Default() *Template {
	title := Placeholder{Kind: KindTitle, X: 0.05, Y: 0.04, W: 0.90, H: 0.16}
	body := Placeholder{Kind: KindBody, X: 0.05, Y: 0.23, W: 0.90, H: 0.70}

	return &Template{
		Name:  "Edutor Corporate Blue",
		Fonts: Fonts{Title: "Arial Black", Body: "Calibri"},
		Colors: Colors{
			Background: "FFFFFF",
			Title:      "1F3864",
			Body:       "262626",
			Accent:     "2E75B6",
		},
		Layouts: []Layout{
			{Name: "Title Slide", Placeholders: []Placeholder{
				{Kind: KindTitle, X: 0.075, Y: 0.30, W: 0.85, H: 0.22},
				{Kind: KindSubtitle, X: 0.15, Y: 0.56, W: 0.70, H: 0.20},
			}},
			{Name: "Title and Content", Placeholders: []Placeholder{title, body}},
			{Name: "Section Header", Placeholders: []Placeholder{
				{Kind: KindTitle, X: 0.07, Y: 0.25, W: 0.86, H: 0.30},
				{Kind: KindBody, X: 0.07, Y: 0.58, W: 0.86, H: 0.15},
			}},
			{Name: "Two Content", Placeholders: []Placeholder{
				title,
				{Kind: KindBody, X: 0.05, Y: 0.23, W: 0.44, H: 0.70},
			}},
			{Name: "Comparison", Placeholders: []Placeholder{
				title,
				{Kind: KindBody, X: 0.05, Y: 0.23, W: 0.44, H: 0.70},
			}},
			{Name: "Title Only", Placeholders: []Placeholder{
				{Kind: KindTitle, X: 0.05, Y: 0.38, W: 0.90, H: 0.24},
			}},
			{Name: "Blank"},
			{Name: "Content with Caption", Placeholders: []Placeholder{
				{Kind: KindTitle, X: 0.05, Y: 0.07, W: 0.33, H: 0.20},
				{Kind: KindBody, X: 0.42, Y: 0.07, W: 0.53, H: 0.86},
			}},
			{Name: "Picture with Caption", Placeholders: []Placeholder{
				title,
				{Kind: KindBody, X: 0.05, Y: 0.23, W: 0.42, H: 0.70},
				{Kind: KindPicture, X: 0.52, Y: 0.23, W: 0.43, H: 0.70},
			}},
		},
	}
}
