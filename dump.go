package wikirace

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cavaliercoder/grab"
	"golang.org/x/sync/errgroup"
)

// LocalDumpFiles is the four dump files a build needs, downloaded and
// hash-verified on disk.
type LocalDumpFiles struct {
	PagePath       string
	RedirectPath   string
	LinkTargetPath string
	PageLinksPath  string
	DateString     string
}

type dumpFileInfo struct {
	name string
	hash string
}

// FetchDumpFiles downloads the latest page, redirect, linktarget, and
// pagelinks dumps for a wiki database (e.g. "enwiki") from mirror into
// directory, verifying each against the mirror's published SHA1 sums.
// The four downloads run concurrently under one errgroup.Group.
func FetchDumpFiles(ctx context.Context, directory, mirror, database string) (LocalDumpFiles, error) {
	files, dateString, err := latestDumpFileInfo(mirror, database)
	if err != nil {
		return LocalDumpFiles{}, err
	}
	if err := os.MkdirAll(directory, 0755); err != nil {
		return LocalDumpFiles{}, err
	}

	baseURL := mirror + "/" + database + "/" + dateString
	local := LocalDumpFiles{
		PagePath:       filepath.Join(directory, files["page"].name),
		RedirectPath:   filepath.Join(directory, files["redirect"].name),
		LinkTargetPath: filepath.Join(directory, files["linktarget"].name),
		PageLinksPath:  filepath.Join(directory, files["pagelinks"].name),
		DateString:     dateString,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	targets := map[string]string{
		local.PagePath:       files["page"].hash,
		local.RedirectPath:   files["redirect"].hash,
		local.LinkTargetPath: files["linktarget"].hash,
		local.PageLinksPath:  files["pagelinks"].hash,
	}
	for path, hash := range targets {
		path, hash := path, hash
		group.Go(func() error {
			name := filepath.Base(path)
			return downloadFile(groupCtx, path, baseURL+"/"+name, hash)
		})
	}
	if err := group.Wait(); err != nil {
		return LocalDumpFiles{}, err
	}

	return local, nil
}

func latestDumpFileInfo(mirror, database string) (map[string]dumpFileInfo, string, error) {
	resp, err := http.Get(mirror + "/" + database + "/latest/" + database + "-latest-sha1sums.txt")
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	checksums, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	kinds := []string{"page", "redirect", "linktarget", "pagelinks"}
	files := make(map[string]dumpFileInfo, len(kinds))
	var dateString string
	for _, kind := range kinds {
		info, err := findDumpHash(string(checksums), kind+".sql.gz")
		if err != nil {
			return nil, "", err
		}
		files[kind] = info
		if dateString == "" {
			dateString = regexp.MustCompile(`[0-9]{8}`).FindString(info.name)
		}
	}
	return files, dateString, nil
}

func findDumpHash(checksums, filename string) (dumpFileInfo, error) {
	re := regexp.MustCompile(`[0-9a-f]{40}  .+?wiki-[0-9]{8}-` + filename)
	line := re.FindString(checksums)
	parts := strings.Split(line, "  ")
	if len(parts) != 2 {
		return dumpFileInfo{}, errors.New("wikirace: " + filename + " checksum not found")
	}
	return dumpFileInfo{hash: parts[0], name: parts[1]}, nil
}

// downloadFile fetches url to target with grab (resumable) and
// verifies its SHA1 against sha1sum, skipping the
// download entirely if a file with a matching hash already exists.
func downloadFile(ctx context.Context, target, url, sha1sum string) error {
	if _, err := os.Stat(target); err == nil {
		if hash, err := fileSHA1(target); err == nil && hash == sha1sum {
			return nil
		}
	}

	client := grab.NewClient()
	req, err := grab.NewRequest(target, url)
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)
	resp := client.Do(req)
	if err := resp.Err(); err != nil {
		return err
	}

	hash, err := fileSHA1(target)
	if err != nil {
		return err
	}
	if hash != sha1sum {
		return errors.New("wikirace: downloaded file " + filepath.Base(target) + " has incorrect hash")
	}
	return nil
}

func fileSHA1(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
