package conversation

import (
	"strings"
	"sync"
)

// BasePrompt is prepended to every composed prompt. It frames the
// assistant's persona for the completion backend.
const BasePrompt = "You are Stacey, a Teams AI Voice Assistant. You help answer peoples' queries based on prompts if provided or function just like a large language model if no additional prompt is given. Given following prompts, answer the query given at the bottom. \n\n"

// SampleMeetingTranscript is installed when setmeetingcontext is issued
// without a transcript of its own, so the command is usable in a demo
// without a live transcription feed.
const SampleMeetingTranscript = "0:0:0.0 --> 0:0:0.130 Ketaki Ghotikar Yeah. 0:0:0.260 --> 0:0:1.670 Ketaki Ghotikar Can you go see my screen? 0:1:24.710 --> 0:1:37.540 Ketaki Ghotikar So basically for this RT real-time monitoring alerting we have created three out-of-the-box rules right now for customers for each of the modalities. 0:1:37.550 --> 0:1:45.200 Ketaki Ghotikar So we want to monitor based on audio parameters, video parameters, and app sharing, which is nothing but screen sharing parameters. 0:2:0.430 --> 0:2:19.40 Ketaki Ghotikar So actually we had a very long discussion when this development or this feature was about to start where whether we should have three different rules or whether we should have a single rule adding all these monitoring settings and scope and everything per modality in the single rule. 0:2:52.960 --> 0:2:59.840 Ketaki Ghotikar So that's why it was decided that we will keep them as separate three separate rules."

// layers is the per-conversation context state. All four fields are
// independently settable; empty strings still occupy their slot in the
// composed prompt.
type layers struct {
	freeText string
	document string
	meeting  string
	query    string
}

// Store holds layered conversational context keyed by conversation id.
// Turns from different conversations can arrive concurrently over HTTP
// and NATS, so every access goes through the mutex.
type Store struct {
	mu    sync.Mutex
	convs map[string]*layers
}

func NewStore() *Store {
	return &Store{convs: make(map[string]*layers)}
}

func (s *Store) get(convID string) *layers {
	l, ok := s.convs[convID]
	if !ok {
		l = &layers{}
		s.convs[convID] = l
	}
	return l
}

func (s *Store) SetFreeText(convID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(convID).freeText = text
}

func (s *Store) ClearFreeText(convID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(convID).freeText = ""
}

func (s *Store) SetDocument(convID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(convID).document = text
}

// SetMeeting installs a meeting transcript. An empty transcript falls
// back to the built-in sample.
func (s *Store) SetMeeting(convID, transcript string) {
	if transcript == "" {
		transcript = SampleMeetingTranscript
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(convID).meeting = transcript
}

func (s *Store) SetQuery(convID, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(convID).query = query
}

func (s *Store) ClearQuery(convID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(convID).query = ""
}

// Compose builds the full prompt for one conversation. The layer order
// is fixed: preamble, free text, document, meeting transcript, query.
// Unset layers contribute an empty string but keep their separator.
func (s *Store) Compose(convID string) string {
	s.mu.Lock()
	l := s.get(convID)
	parts := []string{BasePrompt, l.freeText, l.document, l.meeting, l.query}
	s.mu.Unlock()
	return strings.Join(parts, "\n\n")
}
