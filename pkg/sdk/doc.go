// Package sdk embeds the shelfmind recommender in-process, without the HTTP
// server. It loads a library snapshot once and answers recommendation,
// galaxy and lookup queries against it.
package sdk
