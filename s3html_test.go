package s3html

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"

	"github.com/spatocode/s3html/config"
)

type fakeStorage struct {
	accessErr error
	created   bool
	uploaded  string
	objects   map[string][]byte
	deleted   []string
}

func (f *fakeStorage) Fetch(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return data, nil
}

func (f *fakeStorage) Upload(ctx context.Context, path string) error {
	f.uploaded = path
	return nil
}

func (f *fakeStorage) UploadArchive(ctx context.Context, zipPath, key string) error {
	data, err := os.ReadFile(zipPath)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) Accessible(ctx context.Context) error {
	return f.accessErr
}

func (f *fakeStorage) CreateBucket(ctx context.Context) error {
	f.created = true
	return nil
}

type fakePlatform struct {
	storage      *fakeStorage
	deployed     bool
	codeKey      string
	archiveFound bool
	undeployed   bool
	payload      []byte
}

func (f *fakePlatform) Deploy(ctx context.Context, codeKey string) (bool, error) {
	f.codeKey = codeKey
	_, f.archiveFound = f.storage.objects[codeKey]
	return f.deployed, nil
}

func (f *fakePlatform) Undeploy(ctx context.Context) error {
	f.undeployed = true
	return nil
}

func (f *fakePlatform) Invoke(ctx context.Context, payload []byte) (*events.ALBTargetGroupResponse, error) {
	f.payload = payload
	return &events.ALBTargetGroupResponse{StatusCode: 200, Body: "<h1>hi</h1>"}, nil
}

type fakeMonitor struct {
	cleared  bool
	clearErr error
	watched  bool
	since    *time.Time
	metrics  *Metrics
}

func (f *fakeMonitor) Logs(ctx context.Context, since time.Time) (time.Time, error) {
	f.since = &since
	return since, nil
}

func (f *fakeMonitor) Watch(ctx context.Context) error {
	f.watched = true
	return nil
}

func (f *fakeMonitor) Metrics(ctx context.Context) (*Metrics, error) {
	return f.metrics, nil
}

func (f *fakeMonitor) Clear(ctx context.Context) error {
	f.cleared = true
	return f.clearErr
}

func testProject(t *testing.T) (*Project, *fakeStorage, *fakePlatform, *fakeMonitor) {
	t.Helper()
	cfg := &config.Config{
		Name:   "landing-page",
		Bucket: "pages",
		Region: "us-west-1",
		Key:    config.PageKey,
		Dir:    t.TempDir(),
	}
	p, err := New(cfg)
	assert.Nil(t, err)
	storage := &fakeStorage{objects: map[string][]byte{}}
	platform := &fakePlatform{storage: storage}
	monitor := &fakeMonitor{}
	p.SetStorage(storage)
	p.SetPlatform(platform)
	p.SetMonitor(monitor)
	return p, storage, platform, monitor
}

func writeBinary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), BootstrapFile)
	assert.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewRequiresConfig(t *testing.T) {
	p, err := New(nil)
	assert.Nil(t, p)
	assert.NotNil(t, err)
}

func TestPublish(t *testing.T) {
	tests := []struct {
		name        string
		accessErr   error
		wantCreated bool
		wantErr     error
	}{
		{"bucket exists", nil, false, nil},
		{"bucket created when missing", ErrBucketNotFound, true, nil},
		{"access denied stops publishing", ErrAccessDenied, false, ErrAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			p, storage, _, _ := testProject(t)
			storage.accessErr = tt.accessErr

			err := p.Publish(context.Background(), "site/index.html")
			assert.ErrorIs(err, tt.wantErr)
			assert.Equal(tt.wantCreated, storage.created)
			if tt.wantErr == nil {
				assert.Equal("site/index.html", storage.uploaded)
			} else {
				assert.Empty(storage.uploaded)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	assert := assert.New(t)
	p, storage, _, _ := testProject(t)

	assert.ErrorIs(p.Check(context.Background()), ErrObjectNotFound)

	storage.objects[config.PageKey] = []byte("<h1>hi</h1>")
	assert.Nil(p.Check(context.Background()))
}

func TestPackage(t *testing.T) {
	assert := assert.New(t)
	p, _, _, _ := testProject(t)
	binary := writeBinary(t, "\x7fELF binary")

	archivePath, err := p.Package(binary)
	assert.Nil(err)
	assert.Equal(filepath.Join(p.config.Dir, ArchiveFile), archivePath)

	r, err := zip.OpenReader(archivePath)
	assert.Nil(err)
	defer r.Close()

	assert.Len(r.File, 1)
	f := r.File[0]
	assert.Equal(BootstrapFile, f.Name)
	assert.Equal(os.FileMode(0o755), f.Mode().Perm())

	rc, err := f.Open()
	assert.Nil(err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	assert.Nil(err)
	assert.Equal("\x7fELF binary", string(content))
}

func TestPackageRejectsUnusableBinary(t *testing.T) {
	p, _, _, _ := testProject(t)

	_, err := p.Package(writeBinary(t, ""))
	assert.NotNil(t, err)

	_, err = p.Package(t.TempDir())
	assert.NotNil(t, err)

	_, err = p.Package(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDeploy(t *testing.T) {
	assert := assert.New(t)
	p, storage, platform, _ := testProject(t)

	err := p.Deploy(context.Background(), writeBinary(t, "binary"))
	assert.Nil(err)
	assert.Equal(ArchiveFile, platform.codeKey)
	assert.True(platform.archiveFound, "archive is staged before deploy")

	assert.Equal([]string{ArchiveFile}, storage.deleted)
	assert.NotContains(storage.objects, ArchiveFile)
	_, err = os.Stat(filepath.Join(p.config.Dir, ArchiveFile))
	assert.ErrorIs(err, os.ErrNotExist, "local archive is removed after deploy")
}

func TestStage(t *testing.T) {
	assert := assert.New(t)
	p, storage, _, _ := testProject(t)
	storage.accessErr = ErrBucketNotFound

	err := p.Stage(context.Background(), writeBinary(t, "binary"), "releases/page.zip")
	assert.Nil(err)
	assert.True(storage.created)
	assert.Empty(storage.deleted)

	r, err := zip.NewReader(bytes.NewReader(storage.objects["releases/page.zip"]), int64(len(storage.objects["releases/page.zip"])))
	assert.Nil(err)
	assert.Len(r.File, 1)
	assert.Equal(BootstrapFile, r.File[0].Name)
}

func TestUndeploy(t *testing.T) {
	assert := assert.New(t)
	p, _, platform, monitor := testProject(t)
	monitor.clearErr = errors.New("log group busy")

	assert.Nil(p.Undeploy(context.Background()))
	assert.True(platform.undeployed)
	assert.True(monitor.cleared)
}

func TestInvoke(t *testing.T) {
	assert := assert.New(t)
	p, _, platform, _ := testProject(t)

	resp, err := p.Invoke(context.Background())
	assert.Nil(err)
	assert.Equal(200, resp.StatusCode)

	var req events.ALBTargetGroupRequest
	assert.Nil(json.Unmarshal(platform.payload, &req))
	assert.Equal("GET", req.HTTPMethod)
	assert.Equal("/", req.Path)
}

func TestLogs(t *testing.T) {
	assert := assert.New(t)
	p, _, _, monitor := testProject(t)

	assert.Nil(p.Logs(context.Background(), false))
	assert.False(monitor.watched)
	assert.NotNil(monitor.since)
	assert.True(monitor.since.IsZero())

	assert.Nil(p.Logs(context.Background(), true))
	assert.True(monitor.watched)
}

func TestMetrics(t *testing.T) {
	tests := []struct {
		name    string
		metrics *Metrics
		want    float64
	}{
		{"no invocations", &Metrics{}, 0},
		{"some errors", &Metrics{Invocations: 200, Errors: 5}, 2.5},
		{"all errors", &Metrics{Invocations: 4, Errors: 4}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, _, monitor := testProject(t)
			monitor.metrics = tt.metrics
			m, err := p.Metrics(context.Background())
			assert.Nil(t, err)
			assert.Equal(t, tt.want, m.ErrorRate())
		})
	}
}

func TestStorageError(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("SlowDown: Please reduce your request rate.",
		(&StorageError{Code: "SlowDown", Message: "Please reduce your request rate."}).Error())
	assert.Equal("Internal error", (&StorageError{Message: "Internal error"}).Error())
}

func TestVerbose(t *testing.T) {
	t.Setenv("S3HTML_VERBOSE", "")
	Verbose(true)
	assert.Equal(t, "1", os.Getenv("S3HTML_VERBOSE"))
	Verbose(false)
	assert.Equal(t, "0", os.Getenv("S3HTML_VERBOSE"))
}
