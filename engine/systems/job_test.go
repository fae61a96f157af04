package systems

import (
	"errors"
	"sync"
	"testing"

	"github.com/spaghettifunk/meshview/engine/renderer/metadata"
)

func TestNewJobSystemRejects(t *testing.T) {
	if _, err := NewJobSystem(0, 1); !errors.Is(err, ErrNoWorkers) {
		t.Fatalf("NewJobSystem(0, 1) err=%v; want %v", err, ErrNoWorkers)
	}
	if _, err := NewJobSystem(1, -1); !errors.Is(err, ErrNegativeChannelSize) {
		t.Fatalf("NewJobSystem(1, -1) err=%v; want %v", err, ErrNegativeChannelSize)
	}
}

func TestJobSystemRunsInOrder(t *testing.T) {
	js, err := NewJobSystem(1, 8)
	if err != nil {
		t.Fatalf("NewJobSystem err=%v", err)
	}

	var mu sync.Mutex
	var got []int
	var failures []error
	boom := errors.New("boom")

	for i := 0; i < 5; i++ {
		err := js.Submit(metadata.JobTask{
			Name:        "count",
			InputParams: i,
			OnStart: func(params interface{}) (interface{}, error) {
				if params.(int) == 3 {
					return nil, boom
				}
				return params.(int) * 10, nil
			},
			OnComplete: func(result interface{}) {
				mu.Lock()
				defer mu.Unlock()
				got = append(got, result.(int))
			},
			OnFailure: func(err error) {
				mu.Lock()
				defer mu.Unlock()
				failures = append(failures, err)
			},
		})
		if err != nil {
			t.Fatalf("Submit #%d err=%v", i, err)
		}
	}
	if err := js.Shutdown(); err != nil {
		t.Fatalf("Shutdown err=%v", err)
	}

	want := []int{0, 10, 20, 40}
	if len(got) != len(want) {
		t.Fatalf("results=%v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("results=%v; want %v", got, want)
		}
	}
	if len(failures) != 1 || !errors.Is(failures[0], boom) {
		t.Fatalf("failures=%v; want [%v]", failures, boom)
	}
}

func TestJobSystemSubmitAfterShutdown(t *testing.T) {
	js, err := NewJobSystem(1, 0)
	if err != nil {
		t.Fatalf("NewJobSystem err=%v", err)
	}
	if err := js.Shutdown(); err != nil {
		t.Fatalf("Shutdown err=%v", err)
	}
	if err := js.Shutdown(); err != nil {
		t.Fatalf("second Shutdown err=%v", err)
	}
	job := metadata.JobTask{OnStart: func(interface{}) (interface{}, error) { return nil, nil }}
	if err := js.Submit(job); !errors.Is(err, ErrJobSystemClosed) {
		t.Fatalf("Submit after Shutdown err=%v; want %v", err, ErrJobSystemClosed)
	}
	if err := js.Submit(metadata.JobTask{Name: "empty"}); err == nil {
		t.Fatalf("Submit without OnStart err=nil; want error")
	}
}
