// Package templates holds the signup page components.
//
// Components are hand-built templ.ComponentFunc values writing escaped HTML,
// so they compose and render through the templ runtime like generated code.
package templates

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/mergington/activities/internal/activities/domain"
	"github.com/mergington/activities/internal/platform/i18n"
)

// Banner is a one-shot message shown after a mutation.
type Banner struct {
	Level   string // "success" or "error"
	Message string
}

// PageProps carries everything the signup page renders.
type PageProps struct {
	Loc           i18n.Localizer
	Activities    []domain.Activity
	Banner        Banner
	StaffEnabled  bool
	StaffSignedIn bool
}

const htmxScript = `<script src="https://unpkg.com/htmx.org@1.9.12" defer></script><script src="/static/app.js" defer></script>`

// Page renders the full signup page document.
func Page(props PageProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		loc := props.Loc
		title := loc.T("layout.title")
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="%s"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title><link rel="stylesheet" href="/static/styles.css">%s</head><body>`,
			loc.Tag().String(), esc(title), htmxScript,
		); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w,
			`<header><h1>%s</h1><p>%s</p></header><main id="page-main">`,
			esc(title), esc(loc.T("layout.tagline")),
		); err != nil {
			return err
		}
		if err := Main(props).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</main><footer><p>&copy; Mergington High School</p></footer></body></html>`); err != nil {
			return err
		}
		return nil
	})
}

// Main renders the page body: banner, activity cards, signup form, staff box.
// This is the fragment htmx swaps after a mutation.
func Main(props PageProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := FlashBanner(props.Banner).Render(ctx, w); err != nil {
			return err
		}
		if err := ActivityCards(props).Render(ctx, w); err != nil {
			return err
		}
		if err := SignupForm(props).Render(ctx, w); err != nil {
			return err
		}
		return StaffBox(props).Render(ctx, w)
	})
}

// FlashBanner renders the post-mutation message, or an empty hidden slot.
func FlashBanner(banner Banner) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if banner.Message == "" {
			_, err := io.WriteString(w, `<div id="message" class="message hidden"></div>`)
			return err
		}
		level := banner.Level
		if level != "success" {
			level = "error"
		}
		// data-dismiss-ms drives the fixed-duration dismissal on the page.
		_, err := fmt.Fprintf(w,
			`<div id="message" class="message %s" data-dismiss-ms="5000">%s</div>`,
			level, esc(banner.Message),
		)
		return err
	})
}

// ActivityCards renders every activity with schedule, availability and roster.
func ActivityCards(props PageProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		loc := props.Loc
		if _, err := fmt.Fprintf(w,
			`<section id="activities-container"><h3>%s</h3><div id="activities-list">`,
			esc(loc.T("activities.heading")),
		); err != nil {
			return err
		}
		for _, activity := range props.Activities {
			if err := activityCard(loc, activity, props).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div></section>`)
		return err
	})
}

func activityCard(loc i18n.Localizer, activity domain.Activity, props PageProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<div class="activity-card" data-activity="%s"><h4>%s</h4><p>%s</p><p><strong>%s</strong> %s</p><p class="availability">%s</p>`,
			esc(activity.Name),
			esc(activity.Name),
			esc(activity.Description),
			esc(loc.T("activities.schedule_label")),
			esc(activity.Schedule),
			esc(loc.T("activities.availability", activity.SpotsLeft())),
		); err != nil {
			return err
		}
		if err := roster(loc, activity, props).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func roster(loc i18n.Localizer, activity domain.Activity, props PageProps) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if len(activity.Participants) == 0 {
			_, err := fmt.Fprintf(w,
				`<div class="participants-section"><p class="no-participants">%s</p></div>`,
				esc(loc.T("activities.no_participants")),
			)
			return err
		}
		if _, err := fmt.Fprintf(w,
			`<div class="participants-section"><h5>%s</h5><ul class="participants-list">`,
			esc(loc.T("activities.participants_heading")),
		); err != nil {
			return err
		}
		showUnregister := !props.StaffEnabled || props.StaffSignedIn
		for _, email := range activity.Participants {
			if _, err := fmt.Fprintf(w, `<li><span class="participant-email">%s</span>`, esc(email)); err != nil {
				return err
			}
			if showUnregister {
				if _, err := fmt.Fprintf(w,
					`<form class="unregister-form" method="post" action="/web/unregister" hx-post="/web/unregister" hx-target="#page-main" hx-swap="innerHTML"><input type="hidden" name="activity" value="%s"><input type="hidden" name="email" value="%s"><button type="submit" class="delete-btn">%s</button></form>`,
					esc(activity.Name), esc(email), esc(loc.T("unregister.button")),
				); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</li>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul></div>`)
		return err
	})
}

// SignupForm renders the signup form with one option per open activity.
func SignupForm(props PageProps) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		loc := props.Loc
		if _, err := fmt.Fprintf(w,
			`<section id="signup-container"><h3>%s</h3><form id="signup-form" method="post" action="/web/signup" hx-post="/web/signup" hx-target="#page-main" hx-swap="innerHTML"><div class="form-group"><label for="email">%s</label><input type="email" id="email" name="email" required placeholder="your-email@mergington.edu"></div><div class="form-group"><label for="activity">%s</label><select id="activity" name="activity" required><option value="">%s</option>`,
			esc(loc.T("signup.heading")),
			esc(loc.T("signup.email_label")),
			esc(loc.T("signup.activity_label")),
			esc(loc.T("signup.activity_placeholder")),
		); err != nil {
			return err
		}
		for _, activity := range props.Activities {
			if activity.IsFull() {
				continue
			}
			if _, err := fmt.Fprintf(w, `<option value="%s">%s</option>`, esc(activity.Name), esc(activity.Name)); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w,
			`</select></div><button type="submit">%s</button></form></section>`,
			esc(loc.T("signup.submit")),
		)
		return err
	})
}

// StaffBox renders the staff sign-in form, or the sign-out button once a
// session exists. Nothing renders when staff sessions are not configured.
func StaffBox(props PageProps) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if !props.StaffEnabled {
			return nil
		}
		loc := props.Loc
		if props.StaffSignedIn {
			_, err := fmt.Fprintf(w,
				`<section id="staff-container"><form method="post" action="/web/logout"><button type="submit" class="logout-btn">%s</button></form></section>`,
				esc(loc.T("auth.logout")),
			)
			return err
		}
		_, err := fmt.Fprintf(w,
			`<section id="staff-container"><h3>%s</h3><form method="post" action="/web/login"><div class="form-group"><label for="staff-password">%s</label><input type="password" id="staff-password" name="password" required></div><button type="submit">%s</button></form></section>`,
			esc(loc.T("auth.heading")),
			esc(loc.T("auth.password_label")),
			esc(loc.T("auth.login")),
		)
		return err
	})
}

func esc(value string) string {
	return html.EscapeString(value)
}
