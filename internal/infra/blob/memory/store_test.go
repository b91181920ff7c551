package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"obracore/internal/blob/core"
)

func TestPutGetHeadDelete(t *testing.T) {
	ctx := context.Background()
	store := New()

	info, err := store.Put(ctx, "site-a/slab.jpg", strings.NewReader("jpeg-bytes"), core.PutOptions{ContentType: "image/jpeg", Metadata: map[string]string{"taken_by": "ana"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len("jpeg-bytes")) || info.ContentType != "image/jpeg" {
		t.Fatalf("unexpected info: %+v", info)
	}

	if _, err := store.Put(ctx, "site-a/slab.jpg", strings.NewReader("x"), core.PutOptions{}); err == nil {
		t.Fatalf("duplicate put must fail")
	}

	got, rc, err := store.Get(ctx, "site-a/slab.jpg")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "jpeg-bytes" || got.Metadata["taken_by"] != "ana" {
		t.Fatalf("unexpected content %q meta %v", body, got.Metadata)
	}

	head, err := store.Head(ctx, "site-a/slab.jpg")
	if err != nil || head.Key != "site-a/slab.jpg" {
		t.Fatalf("head: %v %+v", err, head)
	}

	ok, err := store.Delete(ctx, "site-a/slab.jpg")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = store.Delete(ctx, "site-a/slab.jpg")
	if err != nil || ok {
		t.Fatalf("second delete must report missing, got %v %v", ok, err)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	store := New()
	for _, key := range []string{"site-b/2.jpg", "site-a/1.jpg", "site-a/0.jpg"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "site-a/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "site-a/0.jpg" || infos[1].Key != "site-a/1.jpg" {
		t.Fatalf("unexpected listing: %+v", infos)
	}
}

func TestPresignUnsupported(t *testing.T) {
	store := New()
	if _, err := store.PresignURL(context.Background(), "k", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	ctx := context.Background()
	store := New()
	if _, err := store.Put(ctx, "k", strings.NewReader("abc"), core.PutOptions{Metadata: map[string]string{"a": "1"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	info, rc, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = rc.Close()
	info.Metadata["a"] = "mutated"
	again, _ := store.Head(ctx, "k")
	if again.Metadata["a"] != "1" {
		t.Fatalf("metadata mutation leaked into store")
	}
}
