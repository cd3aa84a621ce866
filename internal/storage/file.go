/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// BackupsDirName holds timestamped copies of replaced values.
const BackupsDirName = "backups"

// maxBackups bounds the retained backups per key.
const maxBackups = 5

var safeKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileKV stores every key as <dir>/<key>.json. Writes go to a temp file that
// replaces the target; the previous value is copied to backups/ first. Reads
// fall back to the newest backup when the primary file is missing.
type FileKV struct {
	mu  sync.Mutex
	dir string
}

// OpenFileKV prepares dir. An empty dir uses the directory of DefaultPath.
func OpenFileKV(dir string) (*FileKV, error) {
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Dir(DefaultPath())
	}
	if err := os.MkdirAll(filepath.Join(dir, BackupsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("ensure backups dir: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(key string) (string, error) {
	if !safeKey.MatchString(key) {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := os.ReadFile(p)
	if err == nil {
		return b, true, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	latest, ok := f.latestBackup(key)
	if !ok {
		return nil, false, nil
	}
	b, err = os.ReadFile(latest)
	if err != nil {
		return nil, false, fmt.Errorf("read backup %s: %w", key, err)
	}
	return b, true, nil
}

func (f *FileKV) Put(_ context.Context, key string, val []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, statErr := os.Stat(p); statErr == nil {
		stamp := time.Now().Format("20060102-150405.000000")
		bpath := filepath.Join(f.dir, BackupsDirName, fmt.Sprintf("%s.%s.bak", key, stamp))
		if cerr := copyFile(p, bpath); cerr != nil {
			return fmt.Errorf("backup %s: %w", key, cerr)
		}
		f.pruneBackups(key)
	}
	// Transactional write: to temp file in same directory, then rename over target
	temp := filepath.Join(f.dir, fmt.Sprintf(".%s.tmp-%d-%d", key, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, val); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp %s: %w", key, werr)
	}
	if rerr := os.Rename(temp, p); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace %s: %w", key, rerr)
	}
	return nil
}

func (f *FileKV) Close() error { return nil }

func (f *FileKV) backups(key string) []string {
	ents, err := os.ReadDir(filepath.Join(f.dir, BackupsDirName))
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, key+".") && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(f.dir, BackupsDirName, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out
}

func (f *FileKV) latestBackup(key string) (string, bool) {
	b := f.backups(key)
	if len(b) == 0 {
		return "", false
	}
	return b[len(b)-1], true
}

func (f *FileKV) pruneBackups(key string) {
	b := f.backups(key)
	for len(b) > maxBackups {
		_ = os.Remove(b[0])
		b = b[1:]
	}
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
