package chrome

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/gigurra/receipt-relay/internal"
	"github.com/google/uuid"
)

// clickabilityJS reports why a click on the element would not land.
const clickabilityJS = `function() {
	if (!this.isConnected) return "detached";
	const st = window.getComputedStyle(this);
	const r = this.getBoundingClientRect();
	if (this.disabled || st.display === "none" || st.visibility === "hidden" || r.width === 0 || r.height === 0) return "hidden";
	const top = document.elementFromPoint(r.left + r.width / 2, r.top + r.height / 2);
	if (top && top !== this && !this.contains(top)) return "covered";
	return "ok";
}`

const clearJS = `function() {
	this.value = "";
	this.dispatchEvent(new Event("input", {bubbles: true}));
}`

const textJS = `function() { return this.innerText || this.textContent || ""; }`

const enabledJS = `function() { return !this.disabled && this.getAttribute("aria-disabled") !== "true"; }`

// dropTargetJS adds a hidden file input whose change event replays the
// selected files onto the element as a drag-and-drop.
const dropTargetJS = `function(id) {
	const target = this;
	const input = document.createElement("input");
	input.type = "file";
	input.id = id;
	input.style.display = "none";
	input.addEventListener("change", function() {
		const dt = new DataTransfer();
		for (const f of input.files) dt.items.add(f);
		for (const type of ["dragenter", "dragover", "drop"]) {
			target.dispatchEvent(new DragEvent(type, {bubbles: true, cancelable: true, dataTransfer: dt}));
		}
		input.remove();
	});
	document.body.appendChild(input);
}`

type element struct {
	s    *Session
	node *cdp.Node
}

var _ internal.Element = (*element)(nil)

func (e *element) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

func (e *element) call(ctx context.Context, fn string, res any, args ...any) error {
	return e.s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		if err := chromedp.CallFunctionOn(fn, res, withObject(obj.ObjectID), args...).Do(ctx); err != nil {
			return err
		}
		// fails once the page navigated away, which is fine
		_ = runtime.ReleaseObject(obj.ObjectID).Do(ctx)
		return nil
	}))
}

// withObject binds this of the called function to the resolved node.
func withObject(id runtime.RemoteObjectID) chromedp.CallOption {
	return func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
		return p.WithObjectID(id)
	}
}

func (e *element) ScrollIntoView(ctx context.Context) error {
	return e.s.run(ctx, dom.ScrollIntoViewIfNeeded().WithNodeID(e.node.NodeID))
}

func (e *element) Click(ctx context.Context) error {
	var state string
	if err := e.call(ctx, clickabilityJS, &state); err != nil {
		return err
	}
	switch state {
	case "ok":
	case "covered":
		return internal.ErrClickIntercepted
	default:
		return fmt.Errorf("%w: %s", internal.ErrNotInteractable, state)
	}
	return e.s.run(ctx, chromedp.MouseClickNode(e.node))
}

func (e *element) Clear(ctx context.Context) error {
	return e.call(ctx, clearJS, nil)
}

func (e *element) SendKeys(ctx context.Context, value string) error {
	return e.s.run(ctx, chromedp.SendKeys(e.ids(), value, chromedp.ByNodeID))
}

// Submit presses Enter in the element, which single-page forms handle like a
// native submit.
func (e *element) Submit(ctx context.Context) error {
	return e.s.run(ctx, chromedp.SendKeys(e.ids(), kb.Enter, chromedp.ByNodeID))
}

func (e *element) Text(ctx context.Context) (string, error) {
	var text string
	if err := e.call(ctx, textJS, &text); err != nil {
		return "", err
	}
	return text, nil
}

func (e *element) Enabled(ctx context.Context) (bool, error) {
	var enabled bool
	if err := e.call(ctx, enabledJS, &enabled); err != nil {
		return false, err
	}
	return enabled, nil
}

// Find looks up a CSS descendant without waiting.
func (e *element) Find(ctx context.Context, loc internal.Locator) (internal.Element, error) {
	if loc.By == internal.ByXPath {
		return nil, fmt.Errorf("child lookup of %s: only css is supported", loc)
	}
	nodes, err := e.s.nodes(ctx, loc, chromedp.ByQuery, chromedp.FromNode(e.node))
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", internal.ErrNotFound, loc)
	}
	return &element{s: e.s, node: nodes[0]}, nil
}

func (e *element) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := e.s.run(ctx, chromedp.Screenshot(e.ids(), &buf, chromedp.ByNodeID)); err != nil {
		return nil, err
	}
	return buf, nil
}

// DropFile hands path to a temporary file input and lets it replay the file
// onto the element as a drop. No native file dialog opens.
func (e *element) DropFile(ctx context.Context, path string) error {
	id := "receipt-relay-drop-" + uuid.NewString()
	if err := e.call(ctx, dropTargetJS, nil, id); err != nil {
		return fmt.Errorf("preparing drop: %w", err)
	}
	if err := e.s.run(ctx, chromedp.SetUploadFiles("#"+id, []string{path}, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("dropping %s: %w", path, err)
	}
	return nil
}
