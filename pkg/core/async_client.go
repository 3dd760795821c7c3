package core

import (
	"context"
	"sync"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/intelligence"
	"github.com/oceanbase/cinedeck-go/pkg/userstate"
)

// AsyncClient provides asynchronous cinedeck operations.
//
// It wraps the synchronous Client and runs each call in its own goroutine.
// Every method returns a buffered channel that receives exactly one result
// and is then closed. Wait blocks until all started calls have finished.
//
// Example:
//
//	asyncClient, _ := core.NewAsyncClient(config)
//	defer asyncClient.Close()
//
//	profile := asyncClient.ProfileAsync(ctx)
//	items := asyncClient.SampleAsync(ctx, catalog.All)
//	fmt.Println((<-profile).Profile, len((<-items).Items))
type AsyncClient struct {
	*Client
	wg sync.WaitGroup
}

// NewAsyncClient creates a new asynchronous cinedeck client.
func NewAsyncClient(cfg *Config, opts ...ClientOption) (*AsyncClient, error) {
	client, err := NewClient(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &AsyncClient{Client: client}, nil
}

// SampleAsync samples candidates asynchronously. Sampling never fails, so
// the result error is always nil.
func (ac *AsyncClient) SampleAsync(ctx context.Context, t catalog.ContentType, opts ...SampleOption) <-chan *SampleResult {
	resultChan := make(chan *SampleResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		resultChan <- &SampleResult{Items: ac.Sample(ctx, t, opts...)}
		close(resultChan)
	}()

	return resultChan
}

// SwipeAsync applies a decision to the current card of session asynchronously.
// Calls on one session are still applied one at a time.
func (ac *AsyncClient) SwipeAsync(ctx context.Context, session *Session, d intelligence.Decision) <-chan *SwipeAsyncResult {
	resultChan := make(chan *SwipeAsyncResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		result, err := session.Swipe(ctx, d)
		resultChan <- &SwipeAsyncResult{
			Result: result,
			Error:  err,
		}
		close(resultChan)
	}()

	return resultChan
}

// ProfileAsync reads the decayed profile asynchronously.
func (ac *AsyncClient) ProfileAsync(ctx context.Context) <-chan *ProfileResult {
	resultChan := make(chan *ProfileResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		profile, err := ac.Profile(ctx)
		resultChan <- &ProfileResult{
			Profile: profile,
			Error:   err,
		}
		close(resultChan)
	}()

	return resultChan
}

// ListAsync reads a saved list asynchronously.
func (ac *AsyncClient) ListAsync(ctx context.Context, name userstate.ListName) <-chan *ListResult {
	resultChan := make(chan *ListResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		entries, err := ac.List(ctx, name)
		resultChan <- &ListResult{
			Entries: entries,
			Error:   err,
		}
		close(resultChan)
	}()

	return resultChan
}

// InterpretMoodAsync interprets a mood asynchronously.
func (ac *AsyncClient) InterpretMoodAsync(ctx context.Context, t catalog.ContentType, text string) <-chan *MoodResult {
	resultChan := make(chan *MoodResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		genres, err := ac.InterpretMood(ctx, t, text)
		resultChan <- &MoodResult{
			Genres: genres,
			Error:  err,
		}
		close(resultChan)
	}()

	return resultChan
}

// Wait waits for all started asynchronous operations to complete.
func (ac *AsyncClient) Wait() {
	ac.wg.Wait()
}

// Close waits for pending operations and closes the client.
func (ac *AsyncClient) Close() error {
	ac.Wait()
	return ac.Client.Close()
}
