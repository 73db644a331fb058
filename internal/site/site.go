// Package site holds the page contract of the league site: the login form
// and the daily submission indicator.
package site

import (
	"llreminder/lib/browser"
	"llreminder/lib/telemetry"
)

// Selectors the site's markup is addressed by.
var (
	UsernameField = browser.ByName("username")
	PasswordField = browser.ByName("password")
	LoginButton   = browser.ByName("login")
	StatusElement = browser.ByClass("no_sub")
)

// HiddenStyle is the inline style the status element carries once the day's
// answers are in.
const HiddenStyle = "display:none"

// Marker selects the div whose text confirms the dashboard rendered.
func Marker(text string) browser.Selector {
	return browser.ByText("div", text)
}

var tracer = telemetry.Tracer("llreminder.internal.site")
