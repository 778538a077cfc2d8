package inference

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFactory(t *testing.T) {
	Convey("NewEmbedder", t, func() {
		Convey("defaults to the hashing embedder", func() {
			e, err := NewEmbedder(Config{Dimensions: 16})
			So(err, ShouldBeNil)
			vecs, err := e.Embed(context.Background(), []string{"go developer"})
			So(err, ShouldBeNil)
			So(vecs[0], ShouldHaveLength, 16)
			So(e.(*LazyEmbedder).Name(), ShouldEqual, BackendHashing)
		})

		Convey("returns nil for none", func() {
			e, err := NewEmbedder(Config{Embedder: BackendNone})
			So(err, ShouldBeNil)
			So(e, ShouldBeNil)
		})

		Convey("requires backend settings", func() {
			_, err := NewEmbedder(Config{Embedder: BackendTEI})
			So(errors.Is(err, ErrMissingConfig), ShouldBeTrue)
			_, err = NewEmbedder(Config{Embedder: BackendGemini})
			So(errors.Is(err, ErrMissingConfig), ShouldBeTrue)
		})

		Convey("rejects unknown backends", func() {
			_, err := NewEmbedder(Config{Embedder: "word2vec"})
			So(errors.Is(err, ErrUnknownBackend), ShouldBeTrue)
		})
	})

	Convey("NewCrossEncoder", t, func() {
		ce, err := NewCrossEncoder(Config{})
		So(err, ShouldBeNil)
		So(ce, ShouldBeNil)

		ce, err = NewCrossEncoder(Config{Reranker: BackendTEI, TEIRerankURL: "http://localhost:1"})
		So(err, ShouldBeNil)
		So(ce, ShouldNotBeNil)

		_, err = NewCrossEncoder(Config{Reranker: BackendTEI})
		So(errors.Is(err, ErrMissingConfig), ShouldBeTrue)

		_, err = NewCrossEncoder(Config{Reranker: "colbert"})
		So(errors.Is(err, ErrUnknownBackend), ShouldBeTrue)
	})
}
