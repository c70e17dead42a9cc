package client

import "sync"

// Reporter receives user facing error messages from the synchroniser
type Reporter interface {
	Report(message string)
}

type ReporterFunc func(message string)

func (f ReporterFunc) Report(message string) {
	f(message)
}

type nopReporter struct{}

func (nopReporter) Report(string) {}

// ErrorSlot keeps at most one error message, each report overwrites the previous one
type ErrorSlot struct {
	mutex    sync.Mutex
	message  string
	onChange func(message string)
}

// NewErrorSlot creates a slot, onChange (optional) is called with the new message, "" after Clear
func NewErrorSlot(onChange func(message string)) *ErrorSlot {
	return &ErrorSlot{onChange: onChange}
}

func (e *ErrorSlot) Report(message string) {
	e.set(message)
}

func (e *ErrorSlot) Clear() {
	e.set("")
}

func (e *ErrorSlot) Message() string {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.message
}

func (e *ErrorSlot) set(message string) {
	e.mutex.Lock()
	changed := e.message != message
	e.message = message
	e.mutex.Unlock()
	if changed && e.onChange != nil {
		e.onChange(message)
	}
}
