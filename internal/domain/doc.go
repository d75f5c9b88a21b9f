// Package domain contains the core business entities of the Kanban service:
// users, boards and tasks, the enumerations they use, and the validation
// rules that apply to them independently of storage or transport.
package domain
