package dom

import (
	"errors"
	"testing"
)

func record(log *[]string, label string) Listener {
	return ListenerFunc(func(e *Event) error {
		*log = append(*log, label)
		return nil
	})
}

func TestDispatchEvent_TargetThenBubble(t *testing.T) {
	doc := mustParse(t, testPage)
	link := mustFind(t, doc, "#link-a")
	li := link.Parent()
	menu := mustFind(t, doc, "#menu")

	var log []string
	link.AddEventListener("click", record(&log, "link"))
	li.AddEventListener("click", record(&log, "li"))
	menu.AddEventListener("click", record(&log, "menu"))
	doc.Node().AddEventListener("click", record(&log, "document"))

	ok, err := link.DispatchEvent(NewEvent("click", EventInit{Bubbles: true, Cancelable: true}))
	if err != nil {
		t.Fatalf("DispatchEvent: %v", err)
	}
	if !ok {
		t.Error("expected not cancelled")
	}
	want := []string{"link", "li", "menu", "document"}
	if !equalIDs(log, want) {
		t.Errorf("expected %v, got %v", want, log)
	}
}

func TestDispatchEvent_NonBubbling(t *testing.T) {
	doc := mustParse(t, testPage)
	link := mustFind(t, doc, "#link-a")

	var log []string
	link.AddEventListener("focus", record(&log, "link"))
	link.Parent().AddEventListener("focus", record(&log, "li"))

	if _, err := link.DispatchEvent(NewEvent("focus", EventInit{})); err != nil {
		t.Fatalf("DispatchEvent: %v", err)
	}
	if !equalIDs(log, []string{"link"}) {
		t.Errorf("expected only target listener, got %v", log)
	}
}

func TestDispatchEvent_EventState(t *testing.T) {
	doc := mustParse(t, testPage)
	link := mustFind(t, doc, "#link-a")
	menu := mustFind(t, doc, "#menu")

	var phases []Phase
	var currents []*Node
	check := ListenerFunc(func(e *Event) error {
		if e.Target() != link {
			t.Errorf("unexpected target %v", e.Target())
		}
		if !e.IsDispatching() {
			t.Error("expected dispatching")
		}
		phases = append(phases, e.Phase())
		currents = append(currents, e.CurrentTarget())
		return nil
	})
	link.AddEventListener("click", check)
	menu.AddEventListener("click", check)

	ev := NewEvent("click", EventInit{Bubbles: true})
	if _, err := link.DispatchEvent(ev); err != nil {
		t.Fatalf("DispatchEvent: %v", err)
	}

	if len(phases) != 2 || phases[0] != PhaseAtTarget || phases[1] != PhaseBubbling {
		t.Errorf("unexpected phases %v", phases)
	}
	if currents[0] != link || currents[1] != menu {
		t.Error("unexpected current targets")
	}
	if ev.CurrentTarget() != nil || ev.Phase() != PhaseNone || ev.IsDispatching() {
		t.Error("event state must reset after dispatch")
	}
}

func TestDispatchEvent_PreventDefault(t *testing.T) {
	doc := mustParse(t, testPage)
	link := mustFind(t, doc, "#link-a")

	link.AddEventListener("click", ListenerFunc(func(e *Event) error {
		e.PreventDefault()
		return nil
	}))

	ok, err := link.DispatchEvent(NewEvent("click", EventInit{Cancelable: true}))
	if err != nil {
		t.Fatalf("DispatchEvent: %v", err)
	}
	if ok {
		t.Error("expected cancelled")
	}

	ok, _ = link.DispatchEvent(NewEvent("click", EventInit{Cancelable: false}))
	if !ok {
		t.Error("PreventDefault on a non-cancelable event must have no effect")
	}
}

func TestDispatchEvent_StopPropagation(t *testing.T) {
	doc := mustParse(t, testPage)
	link := mustFind(t, doc, "#link-a")

	var log []string
	link.AddEventListener("click", ListenerFunc(func(e *Event) error {
		log = append(log, "first")
		e.StopPropagation()
		return nil
	}))
	link.AddEventListener("click", record(&log, "second"))
	link.Parent().AddEventListener("click", record(&log, "parent"))

	if _, err := link.DispatchEvent(NewEvent("click", EventInit{Bubbles: true})); err != nil {
		t.Fatalf("DispatchEvent: %v", err)
	}
	want := []string{"first", "second"}
	if !equalIDs(log, want) {
		t.Errorf("expected %v, got %v", want, log)
	}
}

func TestDispatchEvent_StopImmediatePropagation(t *testing.T) {
	doc := mustParse(t, testPage)
	link := mustFind(t, doc, "#link-a")

	var log []string
	link.AddEventListener("click", ListenerFunc(func(e *Event) error {
		log = append(log, "first")
		e.StopImmediatePropagation()
		return nil
	}))
	link.AddEventListener("click", record(&log, "second"))

	if _, err := link.DispatchEvent(NewEvent("click", EventInit{Bubbles: true})); err != nil {
		t.Fatalf("DispatchEvent: %v", err)
	}
	if !equalIDs(log, []string{"first"}) {
		t.Errorf("expected only first, got %v", log)
	}
}

func TestDispatchEvent_ListenerErrorUnwinds(t *testing.T) {
	doc := mustParse(t, testPage)
	link := mustFind(t, doc, "#link-a")
	boom := errors.New("boom")

	var log []string
	link.AddEventListener("click", ListenerFunc(func(e *Event) error {
		return boom
	}))
	link.AddEventListener("click", record(&log, "after"))
	link.Parent().AddEventListener("click", record(&log, "parent"))

	_, err := link.DispatchEvent(NewEvent("click", EventInit{Bubbles: true}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(log) != 0 {
		t.Errorf("no listener may run after an error, got %v", log)
	}
}

func TestDispatchEvent_RemovalDuringDispatch(t *testing.T) {
	doc := mustParse(t, testPage)
	link := mustFind(t, doc, "#link-a")

	var log []string
	var secondID ListenerID
	link.AddEventListener("click", ListenerFunc(func(e *Event) error {
		log = append(log, "first")
		link.RemoveEventListener("click", secondID)
		return nil
	}))
	secondID = link.AddEventListener("click", record(&log, "second"))

	if _, err := link.DispatchEvent(NewEvent("click", EventInit{})); err != nil {
		t.Fatalf("DispatchEvent: %v", err)
	}
	if !equalIDs(log, []string{"first"}) {
		t.Errorf("removed listener must not run, got %v", log)
	}
}

func TestDispatchEvent_AdditionDuringDispatch(t *testing.T) {
	doc := mustParse(t, testPage)
	link := mustFind(t, doc, "#link-a")

	var log []string
	link.AddEventListener("click", ListenerFunc(func(e *Event) error {
		log = append(log, "first")
		link.AddEventListener("click", record(&log, "late"))
		return nil
	}))

	if _, err := link.DispatchEvent(NewEvent("click", EventInit{})); err != nil {
		t.Fatalf("DispatchEvent: %v", err)
	}
	if !equalIDs(log, []string{"first"}) {
		t.Errorf("listener added mid-dispatch must not run, got %v", log)
	}
	if link.ListenerCount("click") != 2 {
		t.Errorf("expected 2 listeners, got %d", link.ListenerCount("click"))
	}
}

func TestDispatchEvent_Reentrant(t *testing.T) {
	doc := mustParse(t, testPage)
	link := mustFind(t, doc, "#link-a")

	ev := NewEvent("click", EventInit{})
	var inner error
	link.AddEventListener("click", ListenerFunc(func(e *Event) error {
		_, inner = link.DispatchEvent(ev)
		return nil
	}))

	if _, err := link.DispatchEvent(ev); err != nil {
		t.Fatalf("DispatchEvent: %v", err)
	}
	if !errors.Is(inner, ErrDispatchInProgress) {
		t.Errorf("expected ErrDispatchInProgress, got %v", inner)
	}
}

func TestEventListeners_DuplicatesAndRemoval(t *testing.T) {
	doc := mustParse(t, testPage)
	link := mustFind(t, doc, "#link-a")

	var log []string
	l := record(&log, "x")
	id1 := link.AddEventListener("click", l)
	id2 := link.AddEventListener("click", l)
	if id1 == id2 {
		t.Fatal("expected distinct handles")
	}
	if link.ListenerCount("click") != 2 {
		t.Fatalf("expected 2 listeners, got %d", link.ListenerCount("click"))
	}

	if !link.RemoveEventListener("click", id1) {
		t.Error("expected removal")
	}
	if link.RemoveEventListener("click", id1) {
		t.Error("second removal must report false")
	}
	if link.RemoveEventListener("keyup", id2) {
		t.Error("removal under another type must report false")
	}

	if _, err := link.DispatchEvent(NewEvent("click", EventInit{})); err != nil {
		t.Fatalf("DispatchEvent: %v", err)
	}
	if len(log) != 1 {
		t.Errorf("expected 1 invocation, got %d", len(log))
	}

	link.RemoveEventListener("click", id2)
	if link.HasEventListeners("click") {
		t.Error("expected no listeners")
	}
}
