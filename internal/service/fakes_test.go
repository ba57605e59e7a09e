package service

import (
	"bytes"
	"context"
	"io"
	"sort"

	"github.com/google/uuid"

	"github.com/malik-javed/ez-secure-files/internal/logging"
	"github.com/malik-javed/ez-secure-files/internal/model"
)

func testLogger() *logging.Logger {
	return logging.New(12) // above error, keeps test output quiet
}

// fakeIdentityStore keeps accounts in memory and enforces uniqueness the way
// the real store's constraints do.
type fakeIdentityStore struct {
	accounts map[string]*model.Account // keyed by email
}

func newFakeIdentityStore() *fakeIdentityStore {
	return &fakeIdentityStore{accounts: map[string]*model.Account{}}
}

func (f *fakeIdentityStore) Insert(_ context.Context, acc *model.Account) error {
	if _, ok := f.accounts[acc.Email]; ok {
		return model.ErrConflict
	}
	for _, existing := range f.accounts {
		if existing.Username == acc.Username {
			return model.ErrConflict
		}
	}
	cp := *acc
	f.accounts[acc.Email] = &cp
	return nil
}

func (f *fakeIdentityStore) FindByEmail(_ context.Context, email string) (*model.Account, error) {
	acc, ok := f.accounts[email]
	if !ok {
		return nil, nil
	}
	cp := *acc
	return &cp, nil
}

func (f *fakeIdentityStore) FindByUsername(_ context.Context, username string) (*model.Account, error) {
	for _, acc := range f.accounts {
		if acc.Username == username {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeIdentityStore) SetVerified(_ context.Context, email string, verified bool) error {
	if acc, ok := f.accounts[email]; ok {
		acc.Verified = verified
	}
	return nil
}

func (f *fakeIdentityStore) SetVerificationToken(_ context.Context, email, token string) error {
	if acc, ok := f.accounts[email]; ok {
		acc.VerificationToken = token
	}
	return nil
}

// fakeNotifier records sent tokens and can be told to fail.
type fakeNotifier struct {
	fail  bool
	sent  int
	last  string
	inbox map[string]string // email -> most recent token
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{inbox: map[string]string{}}
}

func (f *fakeNotifier) SendVerification(email, token string) error {
	if f.fail {
		return io.ErrUnexpectedEOF
	}
	f.sent++
	f.last = token
	f.inbox[email] = token
	return nil
}

// fakeFileStore keeps metadata records in memory.
type fakeFileStore struct {
	records map[uuid.UUID]*model.FileRecord
	failing bool
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{records: map[uuid.UUID]*model.FileRecord{}}
}

func (f *fakeFileStore) Insert(_ context.Context, rec *model.FileRecord) error {
	if f.failing {
		return io.ErrClosedPipe
	}
	cp := *rec
	f.records[rec.ID] = &cp
	return nil
}

func (f *fakeFileStore) FindByID(_ context.Context, id uuid.UUID) (*model.FileRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeFileStore) ListAll(_ context.Context, limit int) ([]model.FileRecord, error) {
	var out []model.FileRecord
	for _, rec := range f.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeBlobStore keeps blobs in memory keyed by storage location.
type fakeBlobStore struct {
	objects map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (f *fakeBlobStore) Write(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	f.objects[key] = data
	return key, int64(len(data)), nil
}

func (f *fakeBlobStore) Read(_ context.Context, location string) (io.ReadCloser, int64, error) {
	data, ok := f.objects[location]
	if !ok {
		return nil, 0, model.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}
