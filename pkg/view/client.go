package view

// clientScript connects the page to its live session. It only forwards
// pointer events and applies node frames; all drag state lives on the
// server. Frame layout mirrors pkg/live.
const clientScript = `(function () {
  var FRAME_NODES = 0x00, FRAME_EVENT = 0x01, FRAME_CONTROL = 0x02;
  var EV_DOWN = 0x01, EV_MOVE = 0x02, EV_UP = 0x03, EV_OVER = 0x04, EV_CANCEL = 0x05;

  function uvarint(out, v) {
    while (v >= 0x80) { out.push((v & 0x7f) | 0x80); v = Math.floor(v / 128); }
    out.push(v);
  }
  function varint(out, v) { uvarint(out, v >= 0 ? v * 2 : -v * 2 - 1); }

  function Reader(buf) { this.b = new Uint8Array(buf); this.i = 0; }
  Reader.prototype.byte = function () { return this.b[this.i++]; };
  Reader.prototype.uvarint = function () {
    var v = 0, mul = 1, c;
    do { c = this.b[this.i++]; v += (c & 0x7f) * mul; mul *= 128; } while (c & 0x80);
    return v;
  };
  Reader.prototype.varint = function () {
    var u = this.uvarint();
    return u % 2 === 0 ? u / 2 : -(u + 1) / 2;
  };
  Reader.prototype.string = function () {
    var n = this.uvarint();
    var s = new TextDecoder().decode(this.b.subarray(this.i, this.i + n));
    this.i += n;
    return s;
  };

  var canvas = document.getElementById("flow-canvas");
  var session = (window.crypto && crypto.randomUUID) ? crypto.randomUUID() : String(Math.random()).slice(2);
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/flow/live/" + session);
  ws.binaryType = "arraybuffer";

  function send(type, fields) {
    if (ws.readyState !== WebSocket.OPEN) return;
    var out = [FRAME_EVENT, type];
    for (var i = 0; i < fields.length; i++) fields[i](out);
    ws.send(new Uint8Array(out));
  }
  function u(v) { return function (out) { uvarint(out, v); }; }
  function s(v) { return function (out) { varint(out, Math.round(v)); }; }

  function nodeOf(target) {
    var el = target.closest ? target.closest("[data-node-id]") : null;
    return el ? parseInt(el.getAttribute("data-node-id"), 10) : -1;
  }

  canvas.addEventListener("mousedown", function (e) {
    var id = nodeOf(e.target);
    if (id >= 0) send(EV_DOWN, [u(id), s(e.clientX), s(e.clientY)]);
  });
  canvas.addEventListener("mousemove", function (e) { send(EV_MOVE, [s(e.clientX), s(e.clientY)]); });
  canvas.addEventListener("mouseup", function (e) { send(EV_UP, [s(e.clientX), s(e.clientY)]); });
  canvas.addEventListener("mouseover", function (e) {
    var id = nodeOf(e.target);
    if (id >= 0) send(EV_OVER, [u(id)]);
  });
  function cancel() { send(EV_CANCEL, []); }
  document.documentElement.addEventListener("mouseleave", cancel);
  document.addEventListener("mouseout", function (e) { if (!e.relatedTarget) cancel(); });
  window.addEventListener("pointercancel", cancel);
  window.addEventListener("blur", cancel);

  ws.onmessage = function (msg) {
    var r = new Reader(msg.data);
    var frame = r.byte();
    if (frame === FRAME_NODES) {
      var count = r.uvarint();
      for (var i = 0; i < count; i++) {
        var id = r.uvarint(), x = r.varint(), y = r.varint(), cursor = r.string();
        var el = canvas.querySelector('[data-node-id="' + id + '"]');
        if (!el) continue;
        el.style.left = x + "px";
        el.style.top = y + "px";
        el.style.cursor = cursor;
      }
    } else if (frame === FRAME_CONTROL) {
      if (r.string() === "RELOAD") location.reload();
    }
  };
})();`
