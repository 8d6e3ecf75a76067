package server

// DashboardHTML is the embedded single-page dashboard. It reads panel state
// from /api/view/*, shows chart SVGs from /charts/, draws the map with
// Leaflet and streams panel events over /ws.
const DashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Vantage · Reputation Analytics</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
    background: #f8fafc; color: #0f172a; padding: 24px;
  }
  header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 20px; }
  h1 { font-size: 1.4em; }
  select { padding: 8px 12px; border: 1px solid #cbd5e1; border-radius: 6px; font-size: 0.95em; min-width: 280px; }
  .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 12px; margin-bottom: 20px; }
  .card { background: #fff; border: 1px solid #e2e8f0; border-radius: 8px; padding: 16px; }
  .card-label { font-size: 0.75em; color: #64748b; text-transform: uppercase; }
  .metric { font-size: 2em; font-weight: 700; margin-top: 4px; }
  .trust-score-good { color: #10b981; }
  .trust-score-avg { color: #f59e0b; }
  .trust-score-bad { color: #ef4444; }
  .sub { font-size: 0.8em; color: #64748b; margin-top: 4px; }
  .change-val { font-size: 1.3em; font-weight: 600; margin-top: 4px; }
  .positive-change { color: #10b981; }
  .negative-change { color: #ef4444; }
  .neutral-change { color: #64748b; }
  .charts { display: grid; grid-template-columns: repeat(auto-fit, minmax(320px, 1fr)); gap: 12px; margin-bottom: 20px; }
  .charts img { width: 100%; height: auto; }
  #map { height: 420px; border-radius: 8px; }
  .legend { display: flex; gap: 16px; font-size: 0.8em; margin-top: 8px; color: #475569; }
  .swatch { display: inline-block; width: 10px; height: 10px; border-radius: 50%; margin-right: 4px; }
  #insight { margin-top: 8px; font-style: italic; color: #334155; }
  .events { max-height: 220px; overflow-y: auto; font-family: monospace; font-size: 0.8em; }
  .event-row { padding: 4px 0; border-bottom: 1px solid #f1f5f9; }
  .rendered { color: #10b981; }
  .stale { color: #94a3b8; }
  .failed { color: #ef4444; }
  #ws-status.connected { color: #10b981; }
  #ws-status.disconnected { color: #ef4444; }
</style>
</head>
<body>
<header>
  <h1>Reputation Analytics</h1>
  <div>
    <select id="business-select"></select>
    <span class="sub">Live: <span id="ws-status" class="disconnected">disconnected</span></span>
  </div>
</header>

<section class="grid">
  <div class="card"><div class="card-label">Trust Score</div><div id="trust-score" class="metric">-</div><div id="industry-avg" class="sub"></div></div>
  <div class="card"><div class="card-label">Weighted Rating</div><div id="rating" class="metric">-</div><div id="delta-rating" class="change-val"></div></div>
  <div class="card"><div class="card-label">Review Volume</div><div id="volume" class="metric">-</div><div id="delta-sentiment" class="change-val"></div></div>
  <div class="card"><div class="card-label">Response Rate</div><div id="response-rate" class="metric">-</div><div id="delta-response" class="change-val"></div></div>
</section>

<section class="charts">
  <div class="card"><div class="card-label">Rating Trend</div><img id="chart-rating-trend" alt="rating trend"></div>
  <div class="card"><div class="card-label">Sentiment (60 days)</div><img id="chart-sentiment-dist" alt="sentiment distribution"></div>
  <div class="card"><div class="card-label">Industry Benchmark</div><img id="chart-benchmark" alt="industry benchmark"></div>
</section>

<section class="card" style="margin-bottom: 20px">
  <div class="card-label">Geographic Sentiment</div>
  <div id="map"></div>
  <div id="legend" class="legend"></div>
  <div id="insight"></div>
</section>

<section class="card">
  <div class="card-label">Panel Events</div>
  <div id="events" class="events"></div>
</section>

<script>
(function() {
  const select = document.getElementById('business-select');
  let map = null;
  let markerLayer = null;

  function text(id, value) { document.getElementById(id).textContent = value; }

  function renderDelta(id, delta) {
    const el = document.getElementById(id);
    if (!delta) { el.textContent = ''; return; }
    el.textContent = delta.text;
    el.className = delta.css;
  }

  function renderState(s) {
    if (s.overview) {
      const v = s.overview.view;
      const el = document.getElementById('trust-score');
      el.textContent = v.trust_score;
      el.className = v.trust_css;
      text('industry-avg', v.industry_avg);
      text('rating', v.rating);
      text('volume', v.volume);
      text('response-rate', v.response_rate);
    }
    if (s.deltas) {
      renderDelta('delta-rating', s.deltas.view.rating);
      renderDelta('delta-sentiment', s.deltas.view.sentiment);
      renderDelta('delta-response', s.deltas.view.response);
    }
    ['rating-trend', 'sentiment-dist', 'benchmark'].forEach(function(c) {
      const chart = s.charts && s.charts[c];
      if (chart) {
        document.getElementById('chart-' + c).src = '/charts/' + c + '.svg?t=' + chart.token;
      }
    });
  }

  function populate(data) {
    select.innerHTML = '';
    data.businesses.forEach(function(o) {
      const opt = document.createElement('option');
      opt.value = o.id;
      opt.textContent = o.label;
      if (o.id === data.selected) opt.selected = true;
      select.appendChild(opt);
    });
  }

  function drawMap(view) {
    if (typeof L === 'undefined') return;
    if (!map) {
      map = L.map('map').setView([view.viewport.center.lat, view.viewport.center.lng], view.viewport.zoom);
      L.tileLayer(view.tiles.url, {
        attribution: view.tiles.attribution,
        subdomains: view.tiles.subdomains,
        maxZoom: view.tiles.max_zoom
      }).addTo(map);
      markerLayer = L.layerGroup().addTo(map);
    }
    markerLayer.clearLayers();
    view.markers.forEach(function(m) {
      L.circleMarker([m.position.lat, m.position.lng], {
        radius: m.radius, color: m.color, fillColor: m.fill_color,
        fillOpacity: m.fill_opacity, weight: m.weight
      }).bindPopup(m.popup).addTo(markerLayer);
    });
    if (view.viewport.bounds) {
      const b = view.viewport.bounds;
      map.fitBounds([[b.south_west.lat, b.south_west.lng], [b.north_east.lat, b.north_east.lng]],
        { padding: view.viewport.padding });
    }
    const legend = document.getElementById('legend');
    legend.innerHTML = '';
    view.legend.forEach(function(e) {
      const item = document.createElement('span');
      const sw = document.createElement('span');
      sw.className = 'swatch';
      sw.style.background = e.color;
      item.appendChild(sw);
      item.appendChild(document.createTextNode(e.label));
      legend.appendChild(item);
    });
    const note = document.createElement('span');
    note.textContent = view.note;
    legend.appendChild(note);
    text('insight', view.insight);
  }

  function refresh() {
    return fetch('/api/view/state').then(function(r) { return r.json(); }).then(renderState);
  }

  select.addEventListener('change', function() {
    fetch('/api/view/select/' + encodeURIComponent(select.value), { method: 'POST' })
      .then(function(r) { return r.json(); })
      .then(function(body) { renderState(body.snapshot || body); })
      .catch(function(err) { console.error('Error loading dashboard:', err); });
  });

  function addEvent(ev) {
    const log = document.getElementById('events');
    const row = document.createElement('div');
    row.className = 'event-row ' + ev.outcome;
    row.textContent = new Date(ev.timestamp).toLocaleTimeString() + '  #' + ev.token + '  ' +
      ev.panel + '  ' + ev.outcome + (ev.error ? '  ' + ev.error : '');
    log.insertBefore(row, log.firstChild);
    while (log.children.length > 200) log.removeChild(log.lastChild);
  }

  function connect() {
    const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
    const ws = new WebSocket(proto + '//' + location.host + '/ws');
    const status = document.getElementById('ws-status');
    ws.onopen = function() { status.textContent = 'connected'; status.className = 'connected'; };
    ws.onclose = function() {
      status.textContent = 'disconnected'; status.className = 'disconnected';
      setTimeout(connect, 2000);
    };
    ws.onmessage = function(msg) {
      const ev = JSON.parse(msg.data);
      addEvent(ev);
      if (ev.outcome === 'rendered') {
        if (ev.panel === 'map') {
          fetch('/api/view/map').then(function(r) { return r.json(); }).then(drawMap);
        } else {
          refresh();
        }
      }
    };
  }

  fetch('/api/view/businesses').then(function(r) { return r.json(); }).then(populate);
  refresh();
  fetch('/api/view/map').then(function(r) { return r.json(); }).then(drawMap);
  fetch('/api/view/history').then(function(r) { return r.json(); }).then(function(evs) { evs.forEach(addEvent); });
  connect();
})();
</script>
</body>
</html>
`
