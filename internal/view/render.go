package view

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/navikt/meetingsview/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// TemplateName is the name of the component template
const TemplateName = "meetings"

// Render writes the component markup for the current state of the view
func (v *MeetingsView) Render(ctx context.Context, w io.Writer) error {
	state, err := v.Snapshot(ctx)
	if err != nil {
		return err
	}
	return RenderState(w, state)
}

// RenderState writes the component markup for stored view state. An empty
// view renders only the heading. Rendering the same state twice produces
// identical output.
func RenderState(w io.Writer, state *models.ViewState) error {
	data := struct {
		Meetings []models.Meeting
	}{}
	if StateOf(state) == StatePopulated {
		data.Meetings = state.Meetings
	}

	if err := templates.ExecuteTemplate(w, TemplateName, data); err != nil {
		return fmt.Errorf("failed to render meetings: %w", err)
	}
	return nil
}
