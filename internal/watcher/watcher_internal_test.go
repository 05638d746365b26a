package watcher

import (
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
)

func TestIsRelevantEvent(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"png write", fsnotify.Event{Name: "a/0041.png", Op: fsnotify.Write}, true},
		{"png create", fsnotify.Event{Name: "a/0041.png", Op: fsnotify.Create}, true},
		{"png remove", fsnotify.Event{Name: "a/0041.png", Op: fsnotify.Remove}, true},
		{"png rename", fsnotify.Event{Name: "a/0041.png", Op: fsnotify.Rename}, true},
		{"upper case extension", fsnotify.Event{Name: "a/0041.PNG", Op: fsnotify.Write}, true},
		{"chmod only", fsnotify.Event{Name: "a/0041.png", Op: fsnotify.Chmod}, false},
		{"text file", fsnotify.Event{Name: "a/readme.txt", Op: fsnotify.Write}, false},
		{"temp file", fsnotify.Event{Name: "a/.0041.png.tmp.12", Op: fsnotify.Create}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRelevantEvent(tt.event))
		})
	}
}
