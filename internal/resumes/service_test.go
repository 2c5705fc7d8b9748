package resumes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"resume-tailor/internal/shared/storage/object"
	localstore "resume-tailor/internal/shared/storage/object/local"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(localstore.New(t.TempDir()), NewMemoryRepo())
}

func TestUploadStoresBlobAndExtractedText(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.Upload(ctx, "user-1", "resume.txt", "text/plain", strings.NewReader("Ada Lovelace, engineer"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.ID == "" || res.StorageKey == "" {
		t.Fatalf("missing identifiers: %+v", res)
	}
	if res.ExtractedText != "Ada Lovelace, engineer" {
		t.Fatalf("extracted text = %q", res.ExtractedText)
	}

	rc, err := svc.Store.Open(ctx, res.StorageKey)
	if err != nil {
		t.Fatalf("Open stored blob: %v", err)
	}
	rc.Close()
}

func TestUploadUnparseableFileGetsPlaceholder(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.Upload(context.Background(), "user-1", "resume.pdf", "application/pdf", strings.NewReader("definitely not a pdf"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.ExtractedText != "Resume PDF: resume.pdf" {
		t.Fatalf("extracted text = %q, want placeholder", res.ExtractedText)
	}
}

func TestUploadHonorsDeclaredMediaType(t *testing.T) {
	svc := newTestService(t)

	// With no declared type the filename decides, not a content sniff.
	res, err := svc.Upload(context.Background(), "user-1", "resume.pdf", "", strings.NewReader("plain prose in a pdf-named file"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.ExtractedText != "Resume PDF: resume.pdf" {
		t.Fatalf("extracted text = %q, want placeholder", res.ExtractedText)
	}
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Upload(context.Background(), "user-1", "resume.txt", "text/plain", strings.NewReader(""))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestDeleteRemovesBlobThenRow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.Upload(ctx, "user-1", "resume.txt", "text/plain", strings.NewReader("body"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := svc.Delete(ctx, "user-1", res.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := svc.Get(ctx, "user-1", res.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after delete", err)
	}
	if _, err := svc.Store.Open(ctx, res.StorageKey); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("err = %v, want blob gone", err)
	}
}

func TestDeleteToleratesMissingBlob(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.Upload(ctx, "user-1", "resume.txt", "text/plain", strings.NewReader("body"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := svc.Store.Delete(ctx, res.StorageKey); err != nil {
		t.Fatalf("pre-delete blob: %v", err)
	}

	if err := svc.Delete(ctx, "user-1", res.ID); err != nil {
		t.Fatalf("Delete with missing blob: %v", err)
	}
}

func TestGetIsScopedToOwner(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.Upload(ctx, "user-1", "resume.txt", "text/plain", strings.NewReader("body"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if _, err := svc.Get(ctx, "user-2", res.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for other users", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "user-1", "first.txt", "text/plain", strings.NewReader("one")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := svc.Upload(ctx, "user-1", "second.txt", "text/plain", strings.NewReader("two")); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	list, err := svc.List(ctx, "user-1", 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
}
