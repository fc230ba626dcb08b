package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/deckgen/internal/deck"
	"github.com/dgallion1/deckgen/internal/state"
)

func TestWriteInspect(t *testing.T) {
	st := state.New("run-1")
	st.DocumentTitle = "Biology"
	st.Chapters = []deck.Chapter{
		{ID: "1", Title: "Cells", Topics: []deck.Topic{{Title: "Membranes"}, {Title: "Nucleus"}}},
	}
	st.Slides = []deck.Slide{
		{Type: deck.SlideMainTitle},
		{Type: deck.SlideChapterTitle},
		{Type: deck.SlideContent},
		{Type: deck.SlideContent},
		{Type: deck.SlideThankYou},
	}
	st.OutputPath = "output/final_presentation.pptx"
	st.Record(state.StageRecord{Stage: "content", Status: "done", Reason: "1 chapters from 1/1 chunks", DurationMs: 12})
	for _, l := range []string{"alpha entry", "beta entry", "gamma entry"} {
		st.AppendLog("Test", l)
	}

	var buf bytes.Buffer
	writeInspect(&buf, st, 2)
	out := buf.String()

	assert.Contains(t, out, "title:    Biology")
	assert.Contains(t, out, "chapters: 1 (2 topics)")
	assert.Contains(t, out, "main_title=1, chapter_title=1, content=2, thank_you=1")
	assert.Contains(t, out, "deck:     output/final_presentation.pptx")
	assert.Contains(t, out, "1 chapters from 1/1 chunks")
	assert.NotContains(t, out, "alpha entry")
	assert.Contains(t, out, "gamma entry")
}

func TestInitialState(t *testing.T) {
	st, err := initialState([]string{"notes.md"}, buildOptions{tone: "expert", slides: 8, theme: "midnight"})
	require.NoError(t, err)
	assert.Equal(t, deck.ToneExpert, st.Tone)
	assert.Equal(t, 8, st.SlideCount)
	assert.Equal(t, "midnight", st.ThemeFile)
	assert.NotEmpty(t, st.RunID)

	_, err = initialState([]string{"notes.md"}, buildOptions{tone: "wizard", slides: 8})
	assert.Error(t, err)
	_, err = initialState(nil, buildOptions{tone: "expert", slides: 8})
	assert.Error(t, err)
	_, err = initialState(nil, buildOptions{from: "render"})
	assert.Error(t, err)
}

func TestInitialStateResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	saved := state.New("run-9")
	saved.DocumentTitle = "Saved"
	require.NoError(t, saved.Save(path))

	st, err := initialState(nil, buildOptions{from: "render", statePath: path})
	require.NoError(t, err)
	assert.Equal(t, "run-9", st.RunID)
	assert.Equal(t, "Saved", st.DocumentTitle)
}
