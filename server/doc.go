// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// Package server exposes the matching engine over HTTP using echo.
//
// Routes:
//
//	GET  /                              service banner
//	GET  /api/health                    liveness and initialization state
//	GET  /api/stats                     catalogue size, model, threshold, clip ids
//	POST /api/process                   {text, method} -> decision
//	POST /api/admin/add-audio           {audio_file, descriptions}
//	POST /api/admin/update-threshold    {threshold}
//
// Decisions are rendered with the string sentinels "none" (no match) and
// "error" (failed query) in the response field. Go callers use the tagged
// core.Result instead.
package server
