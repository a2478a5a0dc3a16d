package apihttp

const controlPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>MPV Controller</title>
  <style>
    body { font-family: sans-serif; max-width: 32rem; margin: 2rem auto; padding: 0 1rem; }
    input[type=text] { width: 100%; box-sizing: border-box; padding: .4rem; }
    form, .controls { margin-bottom: 1rem; }
    button, input[type=submit] { padding: .4rem 1rem; }
    #result { font-family: monospace; white-space: pre-wrap; }
    #result.error { color: #b00020; }
  </style>
</head>
<body>
  <form id="play-form" onsubmit="playURL(event)">
    <input type="text" id="url" placeholder="File url" value=""><br>
    <label>Start paused: <input type="checkbox" id="paused"></label><br>
    <input type="submit" value="Play">
  </form>
  <div class="controls">
    <button onclick="unpause()">Unpause</button>
    <button onclick="pause()">Pause</button>
  </div>
  <div id="result"></div>

  <script>
    function show(promise) {
      const out = document.getElementById('result');
      promise
        .then(function (res) { return res.json(); })
        .then(function (body) {
          out.className = body.status === 'success' ? '' : 'error';
          out.textContent = body.data !== undefined ? body.data : (body.error && body.error.message);
        })
        .catch(function (err) {
          out.className = 'error';
          out.textContent = String(err);
        });
    }
    function unpause() {
      show(fetch('/unpause'));
    }
    function pause() {
      show(fetch('/pause'));
    }
    function playURL(e) {
      e.preventDefault();
      const url = document.getElementById('url').value;
      const state = document.getElementById('paused').checked ? 'paused' : 'playing';
      show(fetch('/play', {
        method: 'POST',
        body: JSON.stringify({ url: url, state: state }),
        headers: { 'Content-Type': 'application/json' }
      }));
    }
  </script>
</body>
</html>
`
