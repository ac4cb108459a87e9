// Package views holds the HTML pages served by the web interface.
//
// Pages are templ components built with templ.ComponentFunc, so they render
// through Context.Render like any generated component. The docs page is
// produced from embedded markdown with goldmark and sanitized with
// bluemonday before it is wrapped in the layout.
package views
