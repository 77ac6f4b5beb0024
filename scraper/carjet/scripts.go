package carjet

import (
	"encoding/json"
	"strings"
)

// Scripts evaluated in the page. Each is an anonymous function invoked
// with JSON-encoded arguments so values never need manual escaping.

var cookieRejectKeywords = []string{
	"rejeitar", "recusar", "apenas necess", "reject", "decline", "only necessary",
	"rechazar", "solo necesarias", "refuser", "tout refuser", "ablehnen",
	"nur notwendige", "rifiuta", "solo necessari", "weigeren", "alleen noodzakelijk",
}

var consentContainers = []string{
	"#onetrust-consent-sdk", "#didomi-host", "#CybotCookiebotDialog", ".cmp-container",
	"#cookie-law-info-bar", "[id*=cookie]", "[class*=cookie]", "[id*=consent]", "[class*=consent]",
}

var suggestionSelectors = []string{
	"#pickup-autocomplete li", ".ui-autocomplete li", ".autocomplete-suggestions > div",
	".autocomplete li", ".suggestions li", "ul[role=listbox] li", "[role=option]",
}

var (
	formSelectors   = []string{"#booking_form", "form[name=frmBusqueda]", "form[action*=search]"}
	submitSelectors = []string{"#booking_form [type=submit]", "button[type=submit]", "input[type=submit]", ".btn-search"}
)

const rejectCookiesJS = `function rejectCookies(keywords, containers) {
  var nodes = document.querySelectorAll('button, a, [role=button], input[type=button], input[type=submit]');
  for (var i = 0; i < nodes.length; i++) {
    var t = (nodes[i].innerText || nodes[i].value || '').trim().toLowerCase();
    if (!t || t.length > 40) continue;
    for (var k = 0; k < keywords.length; k++) {
      if (t.indexOf(keywords[k]) !== -1) { nodes[i].click(); return 'rejected'; }
    }
  }
  var removed = 0;
  containers.forEach(function (s) {
    document.querySelectorAll(s).forEach(function (el) {
      if (el !== document.body && el !== document.documentElement) { el.remove(); removed++; }
    });
  });
  if (document.body) { document.body.style.overflow = 'auto'; }
  return removed > 0 ? 'removed' : 'none';
}`

const focusLocationJS = `function focusLocation(selectors) {
  for (var i = 0; i < selectors.length; i++) {
    var el = document.querySelector(selectors[i]);
    if (!el) continue;
    el.focus();
    el.value = '';
    el.dispatchEvent(new Event('input', {bubbles: true}));
    return selectors[i];
  }
  return '';
}`

const visibleHelperJS = `
  function visible(el) { return !!(el.offsetParent || el.getClientRects().length); }
  function items(selectors) {
    var out = [];
    selectors.forEach(function (s) {
      document.querySelectorAll(s).forEach(function (el) { if (visible(el) && out.indexOf(el) === -1) out.push(el); });
    });
    return out;
  }`

const countSuggestionsJS = `function countSuggestions(selectors) {` + visibleHelperJS + `
  return items(selectors).length;
}`

const exactSuggestionJS = `function exactSuggestion(selectors, wanted) {` + visibleHelperJS + `
  function norm(s) { return (s || '').replace(/\s+/g, ' ').trim().toLowerCase(); }
  var list = items(selectors);
  for (var w = 0; w < wanted.length; w++) {
    var target = norm(wanted[w]);
    if (!target) continue;
    for (var i = 0; i < list.length; i++) {
      var text = norm(list[i].innerText || list[i].textContent);
      if (text === target || text.indexOf(target) === 0) { list[i].click(); return true; }
    }
  }
  return false;
}`

const firstVisibleQueryJS = `function firstVisibleQuery(selectors) {` + visibleHelperJS + `
  var list = items(selectors);
  if (!list.length) return false;
  list[0].click();
  return true;
}`

const firstVisibleDomJS = `function firstVisibleDom() {
  var lis = document.getElementsByTagName('li');
  for (var i = 0; i < lis.length; i++) {
    var el = lis[i];
    if (!(el.offsetParent || el.getClientRects().length)) continue;
    var p = el.parentElement, hint = '';
    while (p && p !== document.body) { hint += ' ' + (p.id || '') + ' ' + (p.className || ''); p = p.parentElement; }
    if (!/autocomplete|suggest|listbox|results/i.test(hint)) continue;
    ['mouseover', 'mousedown', 'mouseup', 'click'].forEach(function (type) {
      el.dispatchEvent(new MouseEvent(type, {bubbles: true, cancelable: true, view: window}));
    });
    return true;
  }
  return false;
}`

const fillFieldsJS = `function fillFields(entries) {
  var missing = [];
  entries.forEach(function (e) {
    var el = null;
    for (var i = 0; i < e.selectors.length && !el; i++) { el = document.querySelector(e.selectors[i]); }
    if (!el) { missing.push(e.name); return; }
    if (el.tagName === 'SELECT') {
      var found = false;
      for (var j = 0; j < el.options.length; j++) {
        var o = el.options[j];
        if (o.value === e.value || o.text.trim() === e.value) { el.selectedIndex = j; found = true; break; }
      }
      if (!found) { missing.push(e.name); return; }
    } else {
      el.value = e.value;
    }
    ['input', 'change', 'blur'].forEach(function (type) {
      el.dispatchEvent(new Event(type, {bubbles: true}));
    });
  });
  return missing;
}`

const submitSearchJS = `function submitSearch(forms, buttons, locationSelectors) {
  var form = null;
  for (var i = 0; i < forms.length && !form; i++) { form = document.querySelector(forms[i]); }
  if (!form) {
    for (var k = 0; k < locationSelectors.length && !form; k++) {
      var input = document.querySelector(locationSelectors[k]);
      if (input && input.form) form = input.form;
    }
  }
  if (form) { HTMLFormElement.prototype.submit.call(form); return 'submitted'; }
  for (var j = 0; j < buttons.length; j++) {
    var b = document.querySelector(buttons[j]);
    if (b) { b.click(); return 'clicked'; }
  }
  return 'none';
}`

const scrollJS = `function scrollPage(px) { window.scrollBy(0, px); return window.scrollY; }`

// hideWebdriverJS runs before any page script on new documents.
const hideWebdriverJS = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

// fieldEntry is one value assignment for fillFieldsJS.
type fieldEntry struct {
	Name      string   `json:"name"`
	Selectors []string `json:"selectors"`
	Value     string   `json:"value"`
}

// call renders an invocation of fn with JSON-encoded args.
func call(fn string, args ...interface{}) string {
	encoded := make([]string, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			b = []byte("null")
		}
		encoded[i] = string(b)
	}
	return "(" + fn + ")(" + strings.Join(encoded, ", ") + ")"
}
