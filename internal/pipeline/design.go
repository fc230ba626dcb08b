package pipeline

import (
	"context"
	"log/slog"

	"github.com/dgallion1/deckgen/internal/deck"
	"github.com/dgallion1/deckgen/internal/state"
	"github.com/dgallion1/deckgen/internal/theme"
)

// DesignStage picks the theme and its template file.
type DesignStage struct {
	templatesDir string
	log          *slog.Logger
}

func NewDesignStage(templatesDir string, log *slog.Logger) *DesignStage {
	return &DesignStage{templatesDir: templatesDir, log: log.With("stage", StageDesign)}
}

func (s *DesignStage) Name() string        { return StageDesign }
func (s *DesignStage) Reads() []state.Key  { return []state.Key{state.KeyThemeFile} }
func (s *DesignStage) Writes() []state.Key { return []state.Key{state.KeyDesign} }

func (s *DesignStage) Run(_ context.Context, st *state.State) (Outcome, error) {
	name, known := theme.Resolve(st.ThemeFile)
	if st.ThemeFile != "" && !known {
		s.log.Warn("unknown theme, using default", "theme", st.ThemeFile, "default", name)
		st.Logf("Design", "Unknown theme %q, using %s", st.ThemeFile, name)
	}

	path := theme.FileFor(s.templatesDir, name)
	tmpl, err := theme.Load(path)
	if err != nil {
		def := theme.Default()
		s.log.Warn("theme template unavailable, using built-in template", "path", path, "error", err)
		st.Logf("Design", "Template %s unavailable, using built-in %s", path, def.Name)
		st.Design = &deck.Design{
			ThemeName: def.Name,
			Fonts:     deck.Fonts{Title: def.Fonts.Title, Body: def.Fonts.Body},
		}
		return done("built-in template"), nil
	}

	st.Design = &deck.Design{
		ThemeName:    tmpl.Name,
		TemplatePath: path,
		Fonts:        deck.Fonts{Title: tmpl.Fonts.Title, Body: tmpl.Fonts.Body},
	}
	st.Logf("Design", "Using theme %s (%s)", tmpl.Name, path)
	return done("%s", tmpl.Name), nil
}
