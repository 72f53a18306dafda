package scene

// ElementKind identifies the visual element variant. The set is closed.
type ElementKind string

const (
	ElementTitle    ElementKind = "title"
	ElementSubtitle ElementKind = "subtitle"
	ElementBody     ElementKind = "body"
	ElementMetric   ElementKind = "metric"
	ElementSteps    ElementKind = "steps"
)

// MetricDirection is the trend tag a metric element carries.
type MetricDirection string

const (
	MetricUp   MetricDirection = "up"
	MetricDown MetricDirection = "down"
	MetricFlat MetricDirection = "flat"
)

// ElementRecord is the immutable metadata for one minted element. Structured
// fields beyond Text are populated only for the kinds that carry them.
type ElementRecord struct {
	ID   int
	Kind ElementKind
	Text string

	// Items holds the entries of a steps element.
	Items []string
	// Direction holds the trend of a metric element.
	Direction MetricDirection

	// CreatedAt is the timestamp on the timeline's axis at which the
	// element was minted; it gates visibility.
	CreatedAt float64

	// Enter names the entrance technique and its play time.
	Enter         string
	EnterDuration float64
}

// IsHeader reports whether the element belongs to the header band of the
// layout (titles and subtitles) rather than the body band.
func (e ElementRecord) IsHeader() bool {
	return e.Kind == ElementTitle || e.Kind == ElementSubtitle
}

func defaultEnter(kind ElementKind) (string, float64) {
	switch kind {
	case ElementTitle, ElementSubtitle:
		return "fade_up", 0.6
	case ElementMetric:
		return "count_up", 0.8
	default:
		return "fade_in", 0.5
	}
}
