package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreviewPrefersPrecomputedBody(t *testing.T) {
	d := Descriptor{Body: strings.Repeat("x", 100), PreviewBody: "teaser"}
	assert.Equal(t, "teaser", d.Preview())
}

func TestPreviewDerivesPrefix(t *testing.T) {
	body := strings.Repeat("a", 1000)
	d := Descriptor{Body: body}
	p := d.Preview()
	assert.Equal(t, body[:400], p)
}

func TestPreviewIsAlwaysStrictlyShorterThanBody(t *testing.T) {
	bodies := []string{
		"short",
		strings.Repeat("b", 399),
		strings.Repeat("b", 400),
		strings.Repeat("b", 401),
		strings.Repeat("日本語テキスト", 100),
	}
	for _, body := range bodies {
		d := Descriptor{Body: body}
		assert.Less(t, len(d.Preview()), len(body), "body length %d", len(body))
	}

	// A precomputed preview at least as long as the body is ignored.
	d := Descriptor{Body: "full", PreviewBody: "longer than body"}
	assert.Less(t, len(d.Preview()), len(d.Body))
}

func TestPreviewEmptyBody(t *testing.T) {
	assert.Empty(t, Descriptor{}.Preview())
}

func TestValidateOneGatingDimensionPerKind(t *testing.T) {
	cap := 60

	ok := Descriptor{ID: 1, Kind: KindArticle, AccessLevel: "premium"}
	assert.NoError(t, ok.Validate())

	crossed := Descriptor{ID: 1, Kind: KindArticle, AccessLevel: "premium", PreviewCapSeconds: &cap}
	assert.ErrorIs(t, crossed.Validate(), ErrMalformed)

	video := Descriptor{ID: 2, Kind: KindVideo, RequiredTier: "basic", PreviewCapSeconds: &cap}
	assert.NoError(t, video.Validate())

	negative := -1
	badCap := Descriptor{ID: 2, Kind: KindVideo, RequiredTier: "basic", PreviewCapSeconds: &negative}
	assert.ErrorIs(t, badCap.Validate(), ErrMalformed)

	thread := Descriptor{ID: 3, Kind: KindForumThread}
	assert.NoError(t, thread.Validate())

	gatedThread := Descriptor{ID: 3, Kind: KindForumThread, RequiredTier: "basic"}
	assert.ErrorIs(t, gatedThread.Validate(), ErrMalformed)

	unknown := Descriptor{ID: 4, Kind: Kind("podcast")}
	assert.ErrorIs(t, unknown.Validate(), ErrMalformed)
}
