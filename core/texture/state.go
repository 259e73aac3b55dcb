package texture

// State is the loading state of a texture entity.
//
// Unloaded entities show the default placeholder. TryLoad promotes through
// the high-priority states; Prefetch walks the prefetch states as Advance
// finds time for them. Loaded is terminal until a hotload resets the
// entity.
type State uint8

const (
	StateUnloaded State = iota
	StatePrefetchNeedsLoading
	StatePrefetchNeedsConverting
	StatePrefetchIsConverting
	StateHighNeedsConverting
	StateHighIsConverting
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StatePrefetchNeedsLoading:
		return "prefetch-needs-loading"
	case StatePrefetchNeedsConverting:
		return "prefetch-needs-converting"
	case StatePrefetchIsConverting:
		return "prefetch-is-converting"
	case StateHighNeedsConverting:
		return "high-needs-converting"
	case StateHighIsConverting:
		return "high-is-converting"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}
