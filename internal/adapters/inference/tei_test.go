package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTEIClient_Embed(t *testing.T) {
	Convey("Given a TEI embedding server", t, func() {
		var got embedRequest
		var path, method string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path, method = r.URL.Path, r.Method
			_ = json.NewDecoder(r.Body).Decode(&got)
			out := make([][]float32, len(got.Inputs))
			for i := range out {
				out[i] = []float32{float32(i), 1}
			}
			_ = json.NewEncoder(w).Encode(out)
		}))
		defer srv.Close()
		c := NewTEIClient(srv.URL + "/")

		Convey("Embed posts every input and returns vectors in order", func() {
			vecs, err := c.Embed(context.Background(), []string{"a", "b", "c"})
			So(err, ShouldBeNil)
			So(path, ShouldEqual, "/embed")
			So(method, ShouldEqual, http.MethodPost)
			So(got.Inputs, ShouldResemble, []string{"a", "b", "c"})
			So(got.Truncate, ShouldBeTrue)
			So(vecs, ShouldHaveLength, 3)
			So(vecs[2], ShouldResemble, []float32{2, 1})
		})

		Convey("An empty batch makes no request", func() {
			vecs, err := c.Embed(context.Background(), nil)
			So(err, ShouldBeNil)
			So(vecs, ShouldBeEmpty)
			So(got.Inputs, ShouldBeNil)
		})
	})

	Convey("Given a failing server", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewTEIClient(srv.URL).Embed(context.Background(), []string{"a"})
		So(errors.Is(err, ErrBadStatus), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "model loading")
	})

	Convey("Given a server returning garbage", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		}))
		defer srv.Close()

		_, err := NewTEIClient(srv.URL).Embed(context.Background(), []string{"a"})
		So(errors.Is(err, ErrBadResponse), ShouldBeTrue)
	})

	Convey("Given a slow server and a short timeout", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte("[]"))
		}))
		defer srv.Close()

		_, err := NewTEIClient(srv.URL, WithTEITimeout(20*time.Millisecond)).Embed(context.Background(), []string{"a"})
		So(err, ShouldNotBeNil)
	})
}

func TestTEIClient_Score(t *testing.T) {
	Convey("Given a TEI rerank server returning hits sorted by score", t, func() {
		var got rerankRequest
		var path string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&got)
			_ = json.NewEncoder(w).Encode([]rerankHit{{Index: 2, Score: 0.9}, {Index: 0, Score: 0.5}, {Index: 1, Score: -1.2}})
		}))
		defer srv.Close()

		scores, err := NewTEIClient(srv.URL).Score(context.Background(), "resume", []string{"j0", "j1", "j2"})
		So(err, ShouldBeNil)
		So(path, ShouldEqual, "/rerank")
		So(got.Query, ShouldEqual, "resume")
		So(got.RawScores, ShouldBeTrue)
		So(scores, ShouldResemble, []float64{0.5, -1.2, 0.9})
	})

	Convey("scatter rejects inconsistent hit lists", t, func() {
		_, err := scatter([]rerankHit{{Index: 0}}, 2)
		So(errors.Is(err, ErrBadResponse), ShouldBeTrue)
		_, err = scatter([]rerankHit{{Index: 0}, {Index: 0}}, 2)
		So(errors.Is(err, ErrBadResponse), ShouldBeTrue)
		_, err = scatter([]rerankHit{{Index: 0}, {Index: 5}}, 2)
		So(errors.Is(err, ErrBadResponse), ShouldBeTrue)
	})
}
