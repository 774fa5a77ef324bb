package program

import (
	"net/http"

	"github.com/2beens/gymtrack/pkg"
)

type Handler struct {
	program *Program
}

func NewHandler(program *Program) *Handler {
	return &Handler{
		program: program,
	}
}

func (handler *Handler) HandleGet(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, handler.program, http.StatusOK)
}
