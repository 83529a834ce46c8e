package visualizer

// Options configures the visualization output.
type Options struct {
	// Direction controls diagram flow: "TB" (top to bottom, bottom frame first) or "LR" (left to right)
	Direction string

	// Title is rendered as Mermaid front matter when set
	Title string

	// ShowIndex prefixes each frame label with its stack index
	ShowIndex bool

	// HighlightActive styles the active frame differently from paused ones
	HighlightActive bool
}

// DefaultOptions returns sensible defaults for visualization.
func DefaultOptions() Options {
	return Options{
		Direction:       "TB",
		HighlightActive: true,
	}
}

// WithDirection sets the diagram direction.
func (o Options) WithDirection(direction string) Options {
	o.Direction = direction

	return o
}

// WithTitle sets the diagram title.
func (o Options) WithTitle(title string) Options {
	o.Title = title

	return o
}

// WithShowIndex enables/disables stack indices in labels.
func (o Options) WithShowIndex(show bool) Options {
	o.ShowIndex = show

	return o
}

// WithHighlightActive enables/disables styling of the active frame.
func (o Options) WithHighlightActive(highlight bool) Options {
	o.HighlightActive = highlight

	return o
}
