package metrics

type Counter interface {
	Inc()
}

type Metrics struct {
	CacheHits          Counter
	CacheMisses        Counter
	FetchErrors        Counter
	SnapshotsServed    Counter
	RefreshesTriggered Counter
}

type noopCounter struct{}

func (noopCounter) Inc() {}

func NewNoop() *Metrics {
	n := noopCounter{}
	return &Metrics{
		CacheHits:          n,
		CacheMisses:        n,
		FetchErrors:        n,
		SnapshotsServed:    n,
		RefreshesTriggered: n,
	}
}
