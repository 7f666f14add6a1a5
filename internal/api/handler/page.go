package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the single-page UI.
type PageHandler struct{}

// NewPageHandler creates a new page handler
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Index serves the meme generator page.
// GET /
func (h *PageHandler) Index(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, indexHTML)
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Memerator</title>
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
            padding: 2rem;
        }
        .container { max-width: 720px; margin: 0 auto; }
        .card {
            background: white;
            border-radius: 16px;
            padding: 1.5rem 2rem;
            box-shadow: 0 10px 40px rgba(0,0,0,0.2);
            margin-bottom: 1.5rem;
        }
        h1 { color: #333; font-size: 1.8rem; margin-bottom: 0.25rem; }
        .subtitle { color: #666; margin-bottom: 1rem; }
        label { display: block; margin: 0.75rem 0 0.25rem; color: #444; font-weight: 500; }
        input[type="text"], input[type="password"] {
            width: 100%;
            padding: 0.6rem 0.75rem;
            border: 2px solid #e0e0e0;
            border-radius: 8px;
            font-size: 1rem;
        }
        input:focus { outline: none; border-color: #667eea; }
        .row { display: flex; gap: 0.5rem; align-items: center; margin-bottom: 0.5rem; }
        .row input { flex: 1; }
        button {
            padding: 0.6rem 1.1rem;
            border: none;
            border-radius: 8px;
            font-size: 0.95rem;
            cursor: pointer;
            background: #667eea;
            color: white;
        }
        button.secondary { background: #e0e0e0; color: #333; }
        button:disabled { opacity: 0.6; cursor: not-allowed; }
        .hidden { display: none; }
        .meme img { width: 100%; border-radius: 8px; margin-bottom: 0.5rem; }
        .meme .meta { color: #666; font-size: 0.9rem; margin-bottom: 0.5rem; }
        .editor { margin-top: 0.5rem; }
    </style>
</head>
<body>
<div class="container">
    <div class="card">
        <h1>Memerator</h1>
        <p class="subtitle">Give it some topics and an audience, get a meme.</p>

        <div id="anonymous">
            <label for="username">Username</label>
            <input type="text" id="username" autocomplete="username">
            <label for="password">Password</label>
            <input type="password" id="password" autocomplete="current-password">
            <div class="row" style="margin-top: 1rem;">
                <button id="login">Log in</button>
                <button id="register" class="secondary">Register</button>
            </div>
        </div>

        <div id="account" class="hidden">
            <div class="row">
                <span id="whoami" style="flex: 1;"></span>
                <button id="seed" class="secondary hidden">Refresh templates</button>
                <button id="logout" class="secondary">Log out</button>
            </div>
        </div>
    </div>

    <div class="card" id="generator">
        <label>Topics</label>
        <div id="topics"></div>
        <button id="addTopic" class="secondary">Add topic</button>
        <label for="audience">Intended audience</label>
        <input type="text" id="audience" placeholder="e.g. office workers">
        <div style="margin-top: 1rem;">
            <button id="generate">Generate</button>
        </div>
    </div>

    <div id="memes"></div>
</div>

<script>
const MAX_TOPICS = 3;
let currentUser = null;

async function api(method, path, body) {
    const opts = { method, headers: {}, credentials: 'same-origin' };
    if (body !== undefined) {
        opts.headers['Content-Type'] = 'application/json';
        opts.body = JSON.stringify(body);
    }
    const res = await fetch(path, opts);
    if (res.status === 204) return null;
    const data = await res.json().catch(() => ({}));
    if (!res.ok) throw new Error(data.error || ('Request failed with status ' + res.status));
    return data;
}

function fail(err) {
    alert(err.message || String(err));
}

function addTopicInput(value) {
    const topics = document.getElementById('topics');
    if (topics.children.length >= MAX_TOPICS) return;
    const row = document.createElement('div');
    row.className = 'row';
    const input = document.createElement('input');
    input.type = 'text';
    input.className = 'topic';
    input.value = value || '';
    const remove = document.createElement('button');
    remove.className = 'secondary';
    remove.textContent = 'Remove';
    remove.onclick = () => {
        if (topics.children.length > 1) row.remove();
        syncTopicButtons();
    };
    row.append(input, remove);
    topics.append(row);
    syncTopicButtons();
}

function syncTopicButtons() {
    const count = document.getElementById('topics').children.length;
    document.getElementById('addTopic').disabled = count >= MAX_TOPICS;
}

function renderAccount() {
    document.getElementById('anonymous').classList.toggle('hidden', !!currentUser);
    document.getElementById('account').classList.toggle('hidden', !currentUser);
    document.getElementById('seed').classList.toggle('hidden', !(currentUser && currentUser.is_admin));
    if (currentUser) {
        const role = currentUser.is_admin ? 'admin' : currentUser.credits + ' credits';
        document.getElementById('whoami').textContent = 'Logged in as ' + currentUser.username + ' (' + role + ')';
    }
}

function canEdit(meme) {
    return currentUser && (currentUser.is_admin || currentUser.id === meme.user_id);
}

function renderMeme(meme) {
    const card = document.createElement('div');
    card.className = 'card meme';

    const img = document.createElement('img');
    img.src = meme.archive_url || meme.url;
    img.alt = meme.text0 + ' / ' + meme.text1;
    const meta = document.createElement('div');
    meta.className = 'meta';
    meta.textContent = 'Topics: ' + meme.topics + ' | Audience: ' + meme.audience;
    card.append(img, meta);

    if (canEdit(meme)) {
        const editor = document.createElement('div');
        editor.className = 'editor';
        const top = document.createElement('input');
        top.type = 'text';
        top.value = meme.text0;
        const bottom = document.createElement('input');
        bottom.type = 'text';
        bottom.value = meme.text1;
        const save = document.createElement('button');
        save.textContent = 'Save captions';
        save.onclick = async () => {
            save.disabled = true;
            try {
                await api('PUT', '/api/v1/memes/' + meme.id, { text0: top.value, text1: bottom.value });
                await loadMemes();
            } catch (err) {
                fail(err);
            } finally {
                save.disabled = false;
            }
        };
        const r1 = document.createElement('div');
        r1.className = 'row';
        r1.append(top);
        const r2 = document.createElement('div');
        r2.className = 'row';
        r2.append(bottom, save);
        editor.append(r1, r2);
        card.append(editor);
    }
    return card;
}

async function loadMemes() {
    const data = await api('GET', '/api/v1/memes');
    const list = document.getElementById('memes');
    list.replaceChildren(...data.memes.map(renderMeme));
}

async function loadUser() {
    try {
        currentUser = await api('GET', '/api/v1/me');
    } catch (err) {
        currentUser = null;
    }
    renderAccount();
}

async function refresh() {
    await loadUser();
    await loadMemes().catch(fail);
}

function credentials() {
    return {
        username: document.getElementById('username').value,
        password: document.getElementById('password').value,
    };
}

document.getElementById('login').onclick = async () => {
    try {
        await api('POST', '/api/v1/auth/login', credentials());
        await refresh();
    } catch (err) {
        fail(err);
    }
};

document.getElementById('register').onclick = async () => {
    try {
        await api('POST', '/api/v1/auth/register', credentials());
        await api('POST', '/api/v1/auth/login', credentials());
        await refresh();
    } catch (err) {
        fail(err);
    }
};

document.getElementById('logout').onclick = async () => {
    try {
        await api('POST', '/api/v1/auth/logout');
        await refresh();
    } catch (err) {
        fail(err);
    }
};

document.getElementById('seed').onclick = async () => {
    try {
        const data = await api('POST', '/api/v1/admin/templates/seed', { force: true });
        alert('Templates: ' + data.result.total + ' stored, ' + data.result.stored + ' new');
    } catch (err) {
        fail(err);
    }
};

document.getElementById('addTopic').onclick = () => addTopicInput('');

document.getElementById('generate').onclick = async () => {
    const button = document.getElementById('generate');
    const topics = Array.from(document.querySelectorAll('.topic')).map((el) => el.value);
    const audience = document.getElementById('audience').value;
    button.disabled = true;
    button.textContent = 'Generating...';
    try {
        await api('POST', '/api/v1/memes', { topics, audience });
        await loadMemes();
    } catch (err) {
        fail(err);
    } finally {
        button.disabled = false;
        button.textContent = 'Generate';
    }
};

addTopicInput('');
refresh();
</script>
</body>
</html>`
