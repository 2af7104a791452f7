// Package authorfeed builds syndication feeds from author profile pages on
// publishing sites that render their article listings with JavaScript.
//
// A run renders the profile page, walks the resulting document through an
// ordered cascade of discovery strategies, keeps the links that belong to the
// configured author, recovers clean titles, descriptions and dates from the
// surrounding markup, and serializes the result as an RSS 2.0 document.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, etree/).
package authorfeed
