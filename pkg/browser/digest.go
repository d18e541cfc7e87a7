package browser

import (
	"context"
	"fmt"
)

// digestScript inventories the interactive surface of the current page as a
// JSON array of {selector, tag, text} records. Selectors prefer stable
// attributes (id, name, aria-label) and fall back to positional paths.
const digestScript = `() => {
	const describe = (el) => {
		if (el.id) return '#' + CSS.escape(el.id);
		if (el.name) return el.tagName.toLowerCase() + '[name="' + el.name + '"]';
		const label = el.getAttribute('aria-label');
		if (label) return el.tagName.toLowerCase() + '[aria-label="' + label + '"]';
		const parent = el.parentElement;
		if (!parent) return el.tagName.toLowerCase();
		const siblings = Array.from(parent.children).filter(c => c.tagName === el.tagName);
		const idx = siblings.indexOf(el) + 1;
		return el.tagName.toLowerCase() + ':nth-of-type(' + idx + ')';
	};
	const visible = (el) => {
		const r = el.getBoundingClientRect();
		return r.width > 0 && r.height > 0;
	};
	const records = [];
	const selectors = 'a, button, input, select, textarea, [role="button"], [role="link"], [role="tab"]';
	for (const el of document.querySelectorAll(selectors)) {
		if (!visible(el)) continue;
		records.push({
			selector: describe(el),
			tag: el.tagName.toLowerCase(),
			type: el.getAttribute('type') || '',
			text: (el.innerText || el.value || el.getAttribute('placeholder') || el.getAttribute('aria-label') || '').trim().slice(0, 80),
		});
		if (records.length >= 120) break;
	}
	return JSON.stringify({
		url: location.href,
		title: document.title,
		elements: records,
	});
}`

// digest captures a compact textual inventory of the current page for the
// model to ground instructions against.
func (s *session) digest(ctx context.Context) (string, error) {
	res, err := s.page.Context(ctx).Eval(digestScript)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func actPrompt(instruction, digest string) string {
	return fmt.Sprintf(`You control a web page through a fixed set of actions.

Instruction: %s

Current page inventory (JSON):
%s

Choose the single action that carries out the instruction. Respond with JSON only:
{
  "action": "click" | "type" | "none",
  "selector": "<CSS selector from the inventory, or empty>",
  "text": "<text to type when action is type, otherwise empty>",
  "observation": "<one sentence describing what the page shows relative to the instruction>"
}

Use "none" when the instruction only asks what is visible. Never invent selectors
that are not present in the inventory.`, instruction, digest)
}
