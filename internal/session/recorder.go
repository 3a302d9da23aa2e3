package session

import "sync"

// Recorder is an in-memory Transport that remembers the last instruction.
// Non-HTTP callers and tests use it to observe what would be sent.
type Recorder struct {
	mu      sync.Mutex
	token   string
	opts    CredentialOptions
	set     bool
	cleared int
}

func (r *Recorder) SetCredential(token string, opts CredentialOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = token
	r.opts = opts
	r.set = true
}

func (r *Recorder) ClearCredential() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = ""
	r.opts = CredentialOptions{}
	r.set = false
	r.cleared++
}

// Credential returns the currently set token and options.
func (r *Recorder) Credential() (string, CredentialOptions, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token, r.opts, r.set
}

// Clears returns how many times ClearCredential was called.
func (r *Recorder) Clears() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cleared
}
