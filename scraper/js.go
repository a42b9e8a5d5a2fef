package scraper

// Page-side scripts. Each returns JSON.stringify output so results cross
// the CDP boundary as one string and decode with encoding/json.

const queryAllJS = `(q) => {
	const out = [];
	for (const el of document.querySelectorAll(q.selector)) {
		if (q.limit > 0 && out.length >= q.limit) break;
		const item = {
			tag: el.tagName.toLowerCase(),
			attrs: {},
			text: '',
			rect: { x: 0, y: 0, width: 0, height: 0 },
			styles: {},
			props: {},
		};
		const cls = el.getAttribute('class');
		if (cls !== null) item.attrs['class'] = cls;
		for (const name of (q.attrs || [])) {
			const v = el.getAttribute(name);
			if (v !== null) item.attrs[name] = v;
		}
		for (const name of (q.props || [])) {
			const v = el[name];
			if (v !== undefined && v !== null) item.props[name] = String(v);
		}
		if (q.text) item.text = el.innerText || el.textContent || '';
		if (q.geometry) {
			const r = el.getBoundingClientRect();
			item.rect = { x: r.x, y: r.y, width: r.width, height: r.height };
		}
		if (q.styles && q.styles.length) {
			const cs = window.getComputedStyle(el);
			for (const p of q.styles) item.styles[p] = cs.getPropertyValue(p);
		}
		out.push(item);
	}
	return JSON.stringify(out);
}`

const stylesheetsJS = `() => {
	const out = [];
	for (const sheet of Array.from(document.styleSheets)) {
		const item = { kind: sheet.href ? 'external' : 'internal' };
		if (sheet.href) item.href = sheet.href;
		try {
			item.rules = Array.from(sheet.cssRules || []).map(r => r.cssText);
		} catch (e) {
			item.access_error = true;
		}
		out.push(item);
	}
	return JSON.stringify(out);
}`

const documentJS = `() => {
	const body = document.body;
	const root = document.documentElement;
	const timing = {};
	const nav = (performance.getEntriesByType && performance.getEntriesByType('navigation')[0]) || null;
	if (nav) {
		timing.ttfb_ms = nav.responseStart;
		timing.dom_content_loaded_ms = nav.domContentLoadedEventEnd;
		timing.load_ms = nav.loadEventEnd;
		timing.transfer_bytes = nav.transferSize || 0;
	}
	timing.resource_count = performance.getEntriesByType ? performance.getEntriesByType('resource').length : 0;
	return JSON.stringify({
		title: document.title || '',
		width: Math.max(body ? body.scrollWidth : 0, root ? root.scrollWidth : 0),
		height: Math.max(body ? body.scrollHeight : 0, root ? root.scrollHeight : 0),
		timing: timing,
	});
}`

// imagesLoadedJS reports whether every image finished loading or failed.
const imagesLoadedJS = `() => Array.from(document.images).every(img => img.complete)`

const scrollBottomJS = `() => {
	const body = document.body;
	const root = document.documentElement;
	window.scrollTo(0, Math.max(body ? body.scrollHeight : 0, root ? root.scrollHeight : 0));
}`

const scrollTopJS = `() => window.scrollTo(0, 0)`

// clickByTextJS clicks the first visible button whose trimmed label starts
// with one of the given phrases. Returns whether anything was clicked.
const clickByTextJS = `(phrases) => {
	const lower = phrases.map(p => p.toLowerCase());
	for (const el of document.querySelectorAll('button, [role="button"]')) {
		const label = (el.innerText || '').trim().toLowerCase();
		if (!label || el.offsetParent === null) continue;
		if (lower.some(p => label.startsWith(p))) {
			el.click();
			return true;
		}
	}
	return false;
}`

// removeOverlaysJS strips fixed or sticky elements with a high z-index and
// common consent containers, then restores page scrolling.
const removeOverlaysJS = `() => {
	for (const el of document.querySelectorAll('*')) {
		const style = window.getComputedStyle(el);
		if (style.position === 'fixed' || style.position === 'sticky') {
			const z = parseInt(style.zIndex, 10);
			if (z >= 900) el.remove();
		}
	}
	const selectors = [
		'[class*="cookie"]', '[class*="consent"]', '[class*="overlay"]',
		'[id*="cookie"]', '[id*="consent"]', '[id*="overlay"]',
		'[class*="popup"]', '[id*="popup"]',
		'[class*="gdpr"]', '[id*="gdpr"]',
		'[class*="modal"]',
	];
	for (const sel of selectors) {
		document.querySelectorAll(sel).forEach(el => {
			const style = window.getComputedStyle(el);
			if (style.position === 'fixed' || style.position === 'sticky' || style.position === 'absolute') {
				el.remove();
			}
		});
	}
	document.documentElement.style.overflow = '';
	if (document.body) document.body.style.overflow = '';
}`
