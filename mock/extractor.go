package mock

import "github.com/smach/authorfeed"

var _ authorfeed.ArticleExtractor = (*ArticleExtractor)(nil)

type ArticleExtractor struct {
	ExtractFn func(html string) ([]*authorfeed.Article, error)
}

func (e *ArticleExtractor) Extract(html string) ([]*authorfeed.Article, error) {
	return e.ExtractFn(html)
}
