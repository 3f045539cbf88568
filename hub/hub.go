// Package hub fetches tokenizer configuration files from a HuggingFace
// Hub-compatible server, caching them on local disk.
//
// Downloads are coordinated across processes with a file lock, so several
// programs can share one cache directory without stepping on each other.
package hub

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const (
	// DefaultEndpoint is the public HuggingFace Hub. Override with
	// WithEndpoint for mirrors or tests.
	DefaultEndpoint = "https://huggingface.co"

	// DefaultDirCreationPerm is used when creating cache directories.
	DefaultDirCreationPerm = os.FileMode(0755)
)

// Repo points to one model repository on the hub, pinned to a revision.
type Repo struct {
	// ID is the repository name, e.g. "google/gemma-2-2b-it".
	ID string

	endpoint  string
	revision  string
	cacheDir  string
	authToken string
	client    *http.Client
}

// New creates a Repo for the given repository id, at revision "main", using
// the default endpoint and cache directory.
func New(id string) *Repo {
	return &Repo{
		ID:       id,
		endpoint: DefaultEndpoint,
		revision: "main",
		cacheDir: DefaultCacheDir(),
		client:   http.DefaultClient,
	}
}

// WithAuth sets the token used for gated or private repositories.
func (r *Repo) WithAuth(token string) *Repo {
	r.authToken = token
	return r
}

// WithRevision pins the repository to a branch, tag or commit hash.
func (r *Repo) WithRevision(revision string) *Repo {
	r.revision = revision
	return r
}

// WithCacheDir changes where downloaded files are stored.
func (r *Repo) WithCacheDir(dir string) *Repo {
	r.cacheDir = dir
	return r
}

// WithEndpoint points the Repo at a different hub server (mirror, proxy, or
// a test server).
func (r *Repo) WithEndpoint(endpoint string) *Repo {
	r.endpoint = strings.TrimRight(endpoint, "/")
	return r
}

// WithClient sets the HTTP client used for requests.
func (r *Repo) WithClient(client *http.Client) *Repo {
	r.client = client
	return r
}

// DefaultCacheDir returns the local directory where repository files are
// cached, honoring $XDG_CACHE_HOME.
func DefaultCacheDir() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return filepath.Join(cacheDir, "huggingface", "hub")
}

// fileURL returns the download URL of one file of the repository.
func (r *Repo) fileURL(fileName string) string {
	return r.endpoint + "/" + r.ID + "/resolve/" + r.revision + "/" + fileName
}

// localPath returns where a file of this repository is cached.
func (r *Repo) localPath(fileName string) string {
	repoDir := strings.ReplaceAll(r.ID, "/", "--")
	return filepath.Join(r.cacheDir, repoDir, r.revision, fileName)
}

// HasFile checks whether the repository serves the given file. Network
// errors count as the file not being available.
func (r *Repo) HasFile(fileName string) bool {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodHead, r.fileURL(fileName), nil)
	if err != nil {
		return false
	}
	r.setAuth(req)
	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// DownloadFile fetches one file of the repository into the local cache and
// returns its path. If the file was downloaded before, the cached copy is
// returned without touching the network.
func (r *Repo) DownloadFile(fileName string) (string, error) {
	return r.DownloadFileCtx(context.Background(), fileName)
}

// DownloadFileCtx is DownloadFile honoring a context during the download.
func (r *Repo) DownloadFileCtx(ctx context.Context, fileName string) (string, error) {
	filePath := r.localPath(fileName)
	if err := r.lockedDownload(ctx, r.fileURL(fileName), filePath); err != nil {
		return "", err
	}
	return filePath, nil
}

func (r *Repo) setAuth(req *http.Request) {
	if r.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.authToken)
	}
}

// lockedDownload downloads url to filePath, if not yet present.
//
// It downloads to filePath+".downloading" and then atomically moves it into
// place, using filePath+".lock" to coordinate multiple processes/programs
// trying to download the same file at the same time.
func (r *Repo) lockedDownload(ctx context.Context, url, filePath string) error {
	if fileExists(filePath) {
		return nil
	}

	// Checks whether context has already been cancelled, and exit immediately.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), DefaultDirCreationPerm); err != nil {
		return errors.Wrapf(err, "failed to create directory for file %q", filePath)
	}

	lockPath := filePath + ".lock"
	var mainErr error
	errLock := execOnFileLock(lockPath, func() {
		if fileExists(filePath) {
			// Some concurrent other process (or goroutine) already downloaded the file.
			return
		}

		tmpPath := filePath + ".downloading"
		mainErr = r.fetch(ctx, url, tmpPath)
		if mainErr != nil {
			mainErr = errors.WithMessagef(mainErr, "while downloading %q to %q", url, tmpPath)
			if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
				klog.Warningf("failed removing temporary file %q: %v", tmpPath, err)
			}
			return
		}
		if err := os.Rename(tmpPath, filePath); err != nil {
			mainErr = errors.Wrapf(err, "failed to move downloaded file %q to %q", tmpPath, filePath)
			return
		}

		// File now exists, so we no longer need the lock file.
		if err := os.Remove(lockPath); err != nil {
			klog.Warningf("error removing lock file %q: %v", lockPath, err)
		}
	})
	if mainErr != nil {
		return mainErr
	}
	if errLock != nil {
		return errors.WithMessagef(errLock, "while locking %q to download %q", lockPath, url)
	}
	return nil
}

// fetch downloads url into tmpPath.
func (r *Repo) fetch(ctx context.Context, url, tmpPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, "building request for %q", url)
	}
	r.setAuth(req)

	klog.V(1).Infof("downloading %q", url)
	resp, err := r.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "requesting %q", url)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("request for %q returned status %s", url, resp.Status)
	}

	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrapf(err, "creating temporary file for download in %q", tmpPath)
	}
	if _, err = io.Copy(tmpFile, resp.Body); err != nil {
		_ = tmpFile.Close()
		return errors.Wrapf(err, "downloading %q", url)
	}
	if err = tmpFile.Close(); err != nil {
		return errors.Wrapf(err, "failed to close temporary download file %q", tmpPath)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
