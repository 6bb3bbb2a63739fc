/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package sqlmark

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// WatchDelay 文件变更后等待的时间，合并编辑器连续写入产生的多个事件
var WatchDelay = 200 * time.Millisecond

// Watch 监听模板目录（包括子目录），文件变化时重新加载模板并清空解析缓存。
// ctx 结束时停止监听。
func (m *DBManager) Watch(ctx context.Context, dirs ...string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return w.Add(path)
			}
			return nil
		})
		if err != nil {
			_ = w.Close()
			return err
		}
	}
	go m.watch(ctx, w, WatchDelay)
	return nil
}

func (m *DBManager) watch(ctx context.Context, w *fsnotify.Watcher, delay time.Duration) {
	defer w.Close()
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			m.log.WithFields(logrus.Fields{"file": ev.Name, "op": ev.Op.String()}).Debug("template changed")
			timer.Reset(delay)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			m.log.WithError(err).Warn("watch templates failed")
		case <-timer.C:
			if err := m.Reload(); err != nil {
				m.log.WithError(err).Warn("reload templates failed")
			}
		}
	}
}
