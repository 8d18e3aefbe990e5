// Package telegram runs chat flows inside Telegram conversations. Each chat
// gets its own controller; option fields are answered through inline
// keyboards and free-text fields through plain messages.
package telegram
