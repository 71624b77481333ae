package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLogrusSinkStdoutDefault(t *testing.T) {
	sink, err := NewLogrusSink("", logrus.InfoLevel)
	if err != nil {
		t.Fatalf("NewLogrusSink: %v", err)
	}
	if sink == nil {
		t.Fatalf("expected a non-nil sink")
	}
	sink.Infof("hello %s", "world")
}

func TestNewLogrusSinkUnknownTarget(t *testing.T) {
	if _, err := NewLogrusSink("carrier-pigeon", logrus.InfoLevel); err == nil {
		t.Errorf("expected an error for an unknown log target")
	}
}

func TestLogrusSinkWithFieldAccumulates(t *testing.T) {
	sink, err := NewLogrusSink("stdout", logrus.InfoLevel)
	if err != nil {
		t.Fatalf("NewLogrusSink: %v", err)
	}
	child := sink.WithField("package", "bash-5.2")
	if child == nil {
		t.Fatalf("expected WithField to return a non-nil Sink")
	}
	child.Warnf("stale entry for %s", "bash-5.2")
}

func TestNopSinkDiscardsEverything(t *testing.T) {
	var n NopSink
	n.Infof("ignored %d", 1)
	n.Warnf("ignored %d", 2)
	n.Errorf("ignored %d", 3)
	if got := n.WithField("k", "v"); got == nil {
		t.Errorf("expected WithField to return a non-nil Sink")
	}
}
