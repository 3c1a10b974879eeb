// Package logmonitor tails the dedicated server's log directory and streams
// new lines to a callback as the server writes them.
package logmonitor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"ark_manager/internal/logger"
)

// LineCallback is called with new log lines as they appear.
type LineCallback func(filename string, lines []string)

// Monitor tails every log file in a directory. It combines fsnotify events
// with a periodic sweep, since the server occasionally writes without
// triggering a watch event on some filesystems.
type Monitor struct {
	logsPath string
	logger   *logger.Logger
	callback LineCallback
	watcher  *fsnotify.Watcher
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	offsets  map[string]int64
	mutex    sync.Mutex
}

// New creates a monitor for the given logs directory.
func New(logsPath string, logger *logger.Logger, callback LineCallback) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		logsPath: logsPath,
		logger:   logger,
		callback: callback,
		ctx:      ctx,
		cancel:   cancel,
		offsets:  make(map[string]int64),
	}
}

// Start begins tailing. Existing file content is skipped; only lines written
// after Start are reported.
func (m *Monitor) Start() error {
	if _, err := os.Stat(m.logsPath); os.IsNotExist(err) {
		m.logger.Warn("Logs directory does not exist yet: %s", m.logsPath)
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(m.logsPath); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch logs directory: %w", err)
	}
	m.watcher = watcher

	if err := m.seedOffsets(); err != nil {
		m.logger.Warn("Failed to scan existing log files: %v", err)
	}

	m.logger.Info("Monitoring logs directory: %s", m.logsPath)
	m.wg.Add(1)
	go m.run()
	return nil
}

// Stop ends tailing and waits for the worker to finish.
func (m *Monitor) Stop() {
	m.cancel()
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()
	m.logger.Debug("Log monitor stopped")
}

// seedOffsets records current sizes so existing content is not replayed.
func (m *Monitor) seedOffsets() error {
	entries, err := os.ReadDir(m.logsPath)
	if err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, entry := range entries {
		if entry.IsDir() || !isLogFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		m.offsets[entry.Name()] = info.Size()
	}
	return nil
}

func (m *Monitor) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.handleEvent(event)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Error("File watcher error: %v", err)
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Monitor) handleEvent(event fsnotify.Event) {
	filename := filepath.Base(event.Name)
	if !isLogFile(filename) {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		m.mutex.Lock()
		m.offsets[filename] = 0
		m.mutex.Unlock()
		m.logger.Debug("New log file: %s", filename)
		m.drain(filename)
	case event.Op.Has(fsnotify.Write):
		m.drain(filename)
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		m.mutex.Lock()
		delete(m.offsets, filename)
		m.mutex.Unlock()
	}
}

// sweep drains every known file, catching writes that produced no event.
func (m *Monitor) sweep() {
	m.mutex.Lock()
	filenames := make([]string, 0, len(m.offsets))
	for filename := range m.offsets {
		filenames = append(filenames, filename)
	}
	m.mutex.Unlock()

	for _, filename := range filenames {
		m.drain(filename)
	}
}

// drain reads everything past the recorded offset and reports it. A file
// that shrank was rotated in place, so reading restarts from the top.
func (m *Monitor) drain(filename string) {
	path := filepath.Join(m.logsPath, filename)
	info, err := os.Stat(path)
	if err != nil {
		m.mutex.Lock()
		delete(m.offsets, filename)
		m.mutex.Unlock()
		return
	}

	m.mutex.Lock()
	offset := m.offsets[filename]
	m.mutex.Unlock()

	if info.Size() < offset {
		offset = 0
	}
	if info.Size() == offset {
		return
	}

	lines, err := readLines(path, offset, info.Size())
	if err != nil {
		m.logger.Error("Failed to read %s: %v", filename, err)
		return
	}

	m.mutex.Lock()
	m.offsets[filename] = info.Size()
	m.mutex.Unlock()

	if len(lines) > 0 && m.callback != nil {
		m.callback(filename, lines)
	}
}

func readLines(path string, start, end int64) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if _, err := file.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(io.LimitReader(file, end-start))
	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func isLogFile(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".log")
}
