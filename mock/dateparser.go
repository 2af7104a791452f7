package mock

import (
	"time"

	"github.com/smach/authorfeed"
)

var _ authorfeed.DateParser = (*DateParser)(nil)

type DateParser struct {
	ParseDateFn func(s string) (time.Time, error)
}

func (p *DateParser) ParseDate(s string) (time.Time, error) {
	return p.ParseDateFn(s)
}
