package callback

// signInCompleteHTML is served after a terminal redirect reaches the
// loopback listener.
const signInCompleteHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Sign-in complete</title>
  <style>
    body { font-family: -apple-system, Segoe UI, sans-serif; display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; background: #f5f5f5; }
    .card { background: #fff; border-radius: 8px; padding: 2.5rem 3rem; box-shadow: 0 2px 8px rgba(0,0,0,.1); text-align: center; }
    h1 { font-size: 1.4rem; margin: 0 0 .5rem; color: #1a7f37; }
    p { color: #555; margin: 0; }
  </style>
</head>
<body>
  <div class="card">
    <h1>Sign-in complete</h1>
    <p>You can close this window and return to the application.</p>
  </div>
</body>
</html>`

// signInFailedHTML is served when the redirect carried an error parameter.
const signInFailedHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Sign-in failed</title>
  <style>
    body { font-family: -apple-system, Segoe UI, sans-serif; display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; background: #f5f5f5; }
    .card { background: #fff; border-radius: 8px; padding: 2.5rem 3rem; box-shadow: 0 2px 8px rgba(0,0,0,.1); text-align: center; }
    h1 { font-size: 1.4rem; margin: 0 0 .5rem; color: #b42318; }
    p { color: #555; margin: 0; }
  </style>
</head>
<body>
  <div class="card">
    <h1>Sign-in failed</h1>
    <p>The identity provider reported an error. You can close this window.</p>
  </div>
</body>
</html>`
