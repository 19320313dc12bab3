package events

import (
	"errors"
	"fmt"
)

// Filter is an event filter expression as accepted by suix_subscribeEvent.
type Filter map[string]any

func MoveEventType(eventType string) Filter {
	return Filter{"MoveEventType": eventType}
}

func Package(packageID string) Filter {
	return Filter{"Package": packageID}
}

func Sender(address string) Filter {
	return Filter{"Sender": address}
}

// All matches events satisfying every filter.
func All(filters ...Filter) Filter {
	return Filter{"All": filters}
}

// Any matches events satisfying at least one filter.
func Any(filters ...Filter) Filter {
	return Filter{"Any": filters}
}

func And(a, b Filter) Filter {
	return Filter{"And": []Filter{a, b}}
}

func Or(a, b Filter) Filter {
	return Filter{"Or": []Filter{a, b}}
}

// Validate checks that the expression has exactly one operator at every level.
func (f Filter) Validate() error {
	if len(f) != 1 {
		return fmt.Errorf("filter must have exactly one key, got %d", len(f))
	}
	for key, value := range f {
		switch key {
		case "MoveEventType", "Package", "Sender":
			s, ok := value.(string)
			if !ok || s == "" {
				return fmt.Errorf("%s filter needs a non-empty string", key)
			}
		case "All", "Any", "And", "Or":
			children, ok := value.([]Filter)
			if !ok || len(children) == 0 {
				return fmt.Errorf("%s filter needs sub-filters", key)
			}
			for _, child := range children {
				if err := child.Validate(); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("unknown filter %q", key)
		}
	}
	return nil
}

// Combine joins filters with All (matchAll) or Any. A single filter is returned as is.
func Combine(filters []Filter, matchAll bool) (Filter, error) {
	switch len(filters) {
	case 0:
		return nil, errors.New("no event filters configured")
	case 1:
		return filters[0], nil
	}
	if matchAll {
		return All(filters...), nil
	}
	return Any(filters...), nil
}
