package services

import (
	"context"
	"sync"

	"github.com/tbourn/resume-gate/internal/domain"
	"github.com/tbourn/resume-gate/internal/mail"
)

// ----- Fake notifier -----

type receivedCall struct {
	Request domain.DownloadRequest
	Links   mail.DecisionLinks
	Repeat  bool
}

type fakeNotifier struct {
	mu sync.Mutex

	received   []receivedCall
	decisions  []domain.DownloadRequest
	resumePath string
	downloaded []domain.DownloadRequest
	contacts   []domain.ContactMessage

	receivedErr   error
	decisionErr   error
	downloadedErr error
	contactErr    error
}

func (n *fakeNotifier) RequestReceived(_ context.Context, r domain.DownloadRequest, links mail.DecisionLinks, repeat bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.received = append(n.received, receivedCall{Request: r, Links: links, Repeat: repeat})
	return n.receivedErr
}

func (n *fakeNotifier) Decision(_ context.Context, r domain.DownloadRequest, resumePath string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decisions = append(n.decisions, r)
	n.resumePath = resumePath
	return n.decisionErr
}

func (n *fakeNotifier) Downloaded(_ context.Context, r domain.DownloadRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.downloaded = append(n.downloaded, r)
	return n.downloadedErr
}

func (n *fakeNotifier) Contact(_ context.Context, m domain.ContactMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.contacts = append(n.contacts, m)
	return n.contactErr
}
