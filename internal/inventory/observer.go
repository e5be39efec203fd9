package inventory

import "smartstore-backend/internal/catalog"

// Observer receives classification and import outcomes.
type Observer interface {
	ObserveClassification(res catalog.Result)
	ImportRow(result string)
}

type nopObserver struct{}

func (nopObserver) ObserveClassification(catalog.Result) {}
func (nopObserver) ImportRow(string)                    {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
