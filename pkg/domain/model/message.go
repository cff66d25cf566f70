package model

import "github.com/m-mizutani/ci-preview/pkg/domain/types"

// Color is an RGB card color
type Color string

const (
	ColorNeutral Color = "#5865F2"
	ColorSuccess Color = "#57F287"
	ColorFailure Color = "#ED4245"
)

// ChatMessage is a platform independent status card
type ChatMessage struct {
	Card    Card
	Buttons []Button
}

// Card is the body of a status message
type Card struct {
	AuthorName  string
	AuthorURL   string
	AuthorIcon  string
	Description string
	FooterText  string
	FooterIcon  string
	Color       Color
}

// Button is a rendered button. Link buttons carry URL and no ID;
// every other style carries ID and no URL.
type Button struct {
	ID       string
	Style    ButtonStyle
	URL      string
	Label    string
	Emoji    string
	Disabled bool
}

// PostedMessage is a message already present on the chat platform
type PostedMessage struct {
	ID   types.MessageID
	Text string
}

// Emojis holds emoji identifiers configured for status rendering
type Emojis struct {
	Processing string
	Success    string
	Failed     string
}
