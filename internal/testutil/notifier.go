package testutil

import "sync"

// Note is one recorded notification.
type Note struct {
	OK  bool
	Msg string
	Err error
}

// RecordingNotifier captures notifications for assertions.
type RecordingNotifier struct {
	mu    sync.Mutex
	notes []Note
}

// Success implements notify.Notifier.
func (r *RecordingNotifier) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, Note{OK: true, Msg: msg})
}

// Failure implements notify.Notifier.
func (r *RecordingNotifier) Failure(msg string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, Note{Msg: msg, Err: err})
}

// Notes returns every notification received so far.
func (r *RecordingNotifier) Notes() []Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Note, len(r.notes))
	copy(out, r.notes)
	return out
}

// Last returns the most recent notification.
func (r *RecordingNotifier) Last() (Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Note{}, false
	}
	return r.notes[len(r.notes)-1], true
}
