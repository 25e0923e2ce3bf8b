package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/form"
)

type AddDiaperCmd struct {
	Status      string `arg:"" enum:"clean,dirty,needs-change" help:"Diaper status (clean|dirty|needs-change)."`
	Observation string `short:"o" help:"Free text note."`
}

func (c *AddDiaperCmd) Run(ctx *Context) error {
	m, err := ctx.Manager()
	if err != nil {
		return err
	}
	defer m.Close()
	f := form.NewDiaperForm(m)
	defer f.Close()
	if err := f.Edit(func(d *form.DiaperFields) {
		d.Status = c.Status
		d.Observation = c.Observation
	}); err != nil {
		return err
	}
	return submit(ctx, f, m.Snapshot)
}

type AddSleepCmd struct {
	Start       string `arg:"" help:"Start time (HH:MM)."`
	End         string `arg:"" help:"End time (HH:MM); earlier than start means the next day."`
	Observation string `short:"o" help:"Free text note."`
}

func (c *AddSleepCmd) Run(ctx *Context) error {
	m, err := ctx.Manager()
	if err != nil {
		return err
	}
	defer m.Close()
	f := form.NewSleepForm(m)
	defer f.Close()
	if err := f.Edit(func(s *form.SleepFields) {
		s.Start = c.Start
		s.End = c.End
		s.Observation = c.Observation
	}); err != nil {
		return err
	}
	return submit(ctx, f, m.Snapshot)
}

type AddFeedingCmd struct {
	Method      string `arg:"" help:"Feeding method (breast|bottle|solids|puree|other)."`
	Observation string `short:"o" help:"Free text note."`
}

func (c *AddFeedingCmd) Run(ctx *Context) error {
	m, err := ctx.Manager()
	if err != nil {
		return err
	}
	defer m.Close()
	f := form.NewFeedingForm(m)
	defer f.Close()
	if err := f.Edit(func(fd *form.FeedingFields) {
		fd.Method = c.Method
		fd.Observation = c.Observation
	}); err != nil {
		return err
	}
	return submit(ctx, f, m.Snapshot)
}

type AddCmd struct {
	Diaper  AddDiaperCmd  `cmd:"" help:"Record a diaper change."`
	Sleep   AddSleepCmd   `cmd:"" help:"Record a sleep session."`
	Feeding AddFeedingCmd `cmd:"" help:"Record a feeding."`
}

func submit[F any](ctx *Context, f *form.Form[F], snapshot func() []internal.Entry) error {
	if err := f.Submit(ctx); err != nil {
		return err
	}
	if seq := snapshot(); len(seq) > 0 {
		ctx.printf("Saved %s\n", describe(seq[0]))
	}
	return nil
}

type ListCmd struct {
	Page    int  `default:"1" help:"Page number."`
	Size    int  `default:"10" help:"Entries per page."`
	Refresh bool `help:"Ignore cached entries and reload from the server."`
}

func (c *ListCmd) Run(ctx *Context) error {
	if c.Refresh {
		identity, err := ctx.RequireUser()
		if err != nil {
			return err
		}
		ctx.Sync.Invalidate(identity.User.ID)
	}
	m, err := ctx.Manager()
	if err != nil {
		return err
	}
	defer m.Close()
	if m.Len() == 0 {
		ctx.printf("No entries yet\n")
		return nil
	}

	w := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tKIND\tDETAILS\tNOTE")
	for e := range m.Page(c.Page, c.Size) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Kind(), details(e.Payload), e.Observation)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	ctx.printf("page %d of %d (%d entries)\n", c.Page, max(m.Pages(c.Size), 1), m.Len())
	return nil
}

type EditCmd struct {
	ID          string `arg:"" help:"Entry id."`
	Observation string `short:"o" help:"New note."`
	Status      string `help:"Diaper status."`
	Start       string `help:"Sleep start (HH:MM)."`
	End         string `help:"Sleep end (HH:MM)."`
	Method      string `help:"Feeding method."`
}

func (c *EditCmd) Run(ctx *Context) error {
	m, err := ctx.Manager()
	if err != nil {
		return err
	}
	defer m.Close()
	entry, ok := m.Get(c.ID)
	if !ok {
		return &internal.NotFoundError{Resource: "entry", ID: c.ID}
	}

	f := form.NewEditForm(m, entry)
	defer f.Close()
	if err := f.Edit(func(e *form.EditFields) {
		set(&e.Observation, c.Observation)
		set(&e.Status, c.Status)
		set(&e.Start, c.Start)
		set(&e.End, c.End)
		set(&e.Method, c.Method)
	}); err != nil {
		return err
	}
	if err := f.Submit(ctx); err != nil {
		return err
	}
	updated, _ := m.Get(c.ID)
	ctx.printf("Updated %s\n", describe(updated))
	return nil
}

func set(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

type RmCmd struct {
	ID string `arg:"" help:"Entry id."`
}

func (c *RmCmd) Run(ctx *Context) error {
	m, err := ctx.Manager()
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Remove(ctx, c.ID); err != nil {
		return err
	}
	ctx.printf("Deleted %s\n", c.ID)
	return nil
}

func describe(e internal.Entry) string {
	return fmt.Sprintf("%s %s (%s)", e.Kind(), e.ID, details(e.Payload))
}

func details(p internal.Payload) string {
	switch v := p.(type) {
	case internal.Diaper:
		return v.Status
	case internal.Sleep:
		return fmt.Sprintf("%s-%s, %s", v.Start, v.End, minutes(v.DurationMinutes))
	case internal.Feeding:
		return v.Method
	default:
		return ""
	}
}

func minutes(total int) string {
	var sb strings.Builder
	if h := total / 60; h > 0 {
		fmt.Fprintf(&sb, "%dh", h)
	}
	if m := total % 60; m > 0 || total == 0 {
		fmt.Fprintf(&sb, "%dm", m)
	}
	return sb.String()
}
