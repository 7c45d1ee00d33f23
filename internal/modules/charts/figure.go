// Package charts builds chart descriptions for the dashboard UI.
// Figures use the Plotly data/layout shape so the UI can hand them to the
// renderer unchanged.
package charts

// Figure is a renderable chart description
type Figure struct {
	ID     string  `json:"id"`
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one data series of a figure
type Trace struct {
	Type        string      `json:"type"` // candlestick, bar, scatter
	Name        string      `json:"name,omitempty"`
	X           interface{} `json:"x"`
	Y           interface{} `json:"y,omitempty"`
	Open        []float64   `json:"open,omitempty"`
	High        []float64   `json:"high,omitempty"`
	Low         []float64   `json:"low,omitempty"`
	Close       []float64   `json:"close,omitempty"`
	YAxis       string      `json:"yaxis,omitempty"` // "y" or "y2"
	Orientation string      `json:"orientation,omitempty"`
	Mode        string      `json:"mode,omitempty"`
	Marker      *Marker     `json:"marker,omitempty"`
	Line        *Line       `json:"line,omitempty"`
	ShowLegend  bool        `json:"showlegend"`
}

// Marker styles bars
type Marker struct {
	Color string `json:"color"`
}

// Line styles scatter lines
type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// Layout describes the figure's frame and axes
type Layout struct {
	Title        string `json:"title"`
	Height       int    `json:"height,omitempty"`
	Width        int    `json:"width,omitempty"`
	PaperBGColor string `json:"paper_bgcolor,omitempty"`
	PlotBGColor  string `json:"plot_bgcolor,omitempty"`
	XAxis        Axis   `json:"xaxis"`
	YAxis        Axis   `json:"yaxis"`
	YAxis2       *Axis  `json:"yaxis2,omitempty"`
}

// Axis describes one axis
type Axis struct {
	Title      string `json:"title"`
	Type       string `json:"type,omitempty"`
	Side       string `json:"side,omitempty"`
	Overlaying string `json:"overlaying,omitempty"`
	ShowGrid   bool   `json:"showgrid"`
}
