package api

const dashboardUI = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Printer Dashboard</title>
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: #f5f5f5;
            color: #333;
            line-height: 1.6;
        }
        .container { max-width: 960px; margin: 0 auto; padding: 20px; }
        header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 30px 20px;
            text-align: center;
            margin-bottom: 20px;
            border-radius: 8px;
        }
        header h1 { font-size: 24px; margin-bottom: 5px; }
        header p { opacity: 0.9; font-size: 14px; }
        .overview {
            display: flex;
            gap: 15px;
            margin-bottom: 20px;
        }
        .overview .card { flex: 1; text-align: center; }
        .overview .count { font-size: 32px; font-weight: 700; }
        .count.active { color: #22c55e; }
        .count.stopped { color: #ef4444; }
        .card {
            background: white;
            border-radius: 8px;
            padding: 20px;
            margin-bottom: 20px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fill, minmax(210px, 1fr));
            gap: 15px;
        }
        .printer-card {
            background: white;
            border-radius: 8px;
            padding: 15px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
            border-top: 4px solid #9ca3af;
        }
        .printer-card.online { border-top-color: #22c55e; }
        .printer-card.printing { border-top-color: #3b82f6; }
        .printer-card.offline { border-top-color: #ef4444; }
        .printer-card h3 { font-size: 16px; }
        .printer-card .pid { font-size: 12px; color: #888; margin-bottom: 8px; }
        .badge {
            display: inline-block;
            padding: 2px 10px;
            border-radius: 999px;
            font-size: 12px;
            font-weight: 600;
            color: white;
            background: #9ca3af;
            margin-bottom: 8px;
        }
        .badge.online { background: #22c55e; }
        .badge.printing { background: #3b82f6; }
        .badge.offline { background: #ef4444; }
        .row { display: flex; justify-content: space-between; font-size: 13px; padding: 3px 0; }
        .row .label { color: #666; }
        .conn {
            display: flex;
            align-items: center;
            gap: 8px;
            font-size: 14px;
        }
        .dot {
            width: 10px; height: 10px;
            border-radius: 50%;
            background: #ef4444;
        }
        .dot.connected { background: #22c55e; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>Printer Dashboard</h1>
            <p>Live 3D printer sensor status</p>
        </header>

        <div class="card conn">
            <span class="dot" id="conn-dot"></span>
            <span id="conn-text">Disconnected</span>
        </div>

        <div class="overview">
            <div class="card">
                <div class="count active" id="active-count">0</div>
                <div>Active</div>
            </div>
            <div class="card">
                <div class="count stopped" id="stopped-count">0</div>
                <div>Stopped</div>
            </div>
        </div>

        <div class="grid" id="printers-grid"></div>
    </div>

    <script>
        function render(snap) {
            document.getElementById('active-count').textContent = snap.active_count;
            document.getElementById('stopped-count').textContent = snap.stopped_count;

            const grid = document.getElementById('printers-grid');
            grid.innerHTML = snap.printers.map(p => {
                const dist = (p.distance_mm !== null && p.distance_mm !== undefined)
                    ? p.distance_mm.toFixed(1) + ' mm' : 'N/A';
                const updated = p.last_update ? new Date(p.last_update).toLocaleTimeString() : 'never';
                return '<div class="printer-card ' + p.status + '">' +
                    '<h3>' + p.name + '</h3>' +
                    '<div class="pid">' + p.id + '</div>' +
                    '<span class="badge ' + p.status + '">' + p.status + '</span>' +
                    '<div class="row"><span class="label">Distance</span><span>' + dist + '</span></div>' +
                    '<div class="row"><span class="label">Updated</span><span>' + updated + '</span></div>' +
                    '</div>';
            }).join('');
        }

        function setConnection(status) {
            const dot = document.getElementById('conn-dot');
            const text = document.getElementById('conn-text');
            if (status && status.connected) {
                dot.classList.add('connected');
                text.textContent = status.polling && status.live_sockets === 0
                    ? 'Connected (polling)'
                    : 'Connected (' + status.live_sockets + ' sockets)';
            } else {
                dot.classList.remove('connected');
                text.textContent = 'Disconnected';
            }
        }

        async function refresh() {
            try {
                const res = await fetch('/api/printers');
                const data = await res.json();
                render(data);
                setConnection(data.connection);
            } catch (err) {
                setConnection(null);
            }
        }

        function subscribe() {
            const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
            const ws = new WebSocket(proto + location.host + '/ws');
            ws.onmessage = (event) => {
                try {
                    render(JSON.parse(event.data));
                } catch (err) { /* ignore malformed frames */ }
            };
            ws.onclose = () => setTimeout(subscribe, 5000);
        }

        refresh();
        subscribe();
        setInterval(refresh, 5000);
    </script>
</body>
</html>`
