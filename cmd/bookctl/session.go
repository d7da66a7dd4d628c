package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/wizard"
)

// session renders the wizard state and feeds it the user's answers.
type session struct {
	in  *bufio.Scanner
	out io.Writer
	w   *wizard.Wizard
}

// run walks one booking flow until the user quits or input ends.
func run(ctx context.Context, in io.Reader, out io.Writer, w *wizard.Wizard, slug string) error {
	s := &session{in: bufio.NewScanner(in), out: out, w: w}

	if err := w.Start(ctx, slug); err != nil {
		return err
	}

	for {
		line, ok := s.step()
		if !ok {
			return nil
		}
		if err := s.apply(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return err
			}
			s.printf("! %s\n", describe(err))
		}
	}
}

var errQuit = errors.New("quit")

// step prints the current screen and reads one answer.
func (s *session) step() (string, bool) {
	switch st := s.w.State().(type) {
	case wizard.SalonInfo:
		s.printf("\n%s\n%s · %s\n[enter] continuar  [q] sair\n", st.Salon.Name, st.Salon.Address, st.Salon.Phone)
	case wizard.SelectProvider:
		s.printf("\nProfissionais:\n")
		for i, p := range st.Providers {
			s.printf("  %d) %s\n", i+1, p.Name)
		}
		s.printf("[n] escolher  [b] voltar  [q] sair\n")
	case wizard.SelectService:
		s.printf("\nServiços de %s:\n", st.Draft.Provider.Name)
		for i, svc := range st.Services {
			mark := ""
			if !svc.Available() {
				mark = " (indisponível)"
			}
			s.printf("  %d) %s · %d min · R$ %.2f%s\n", i+1, svc.Name, svc.DurationMinutes, svc.Price, mark)
		}
		s.printf("[n] escolher  [b] voltar  [q] sair\n")
	case wizard.SelectDateTime:
		if st.Date == "" {
			s.printf("\nData (AAAA-MM-DD) para %s:\n", st.Draft.Service.Name)
			break
		}
		s.printf("\nHorários em %s:\n", st.Date)
		if len(st.Slots) == 0 {
			s.printf("  nenhum horário livre\n")
		}
		for i, slot := range st.Slots {
			s.printf("  %d) %s\n", i+1, slot)
		}
		s.printf("[n] escolher  [AAAA-MM-DD] outra data  [b] voltar  [q] sair\n")
	case wizard.Confirm:
		d := st.Draft
		s.printf("\n%s com %s em %s às %s\n", d.Service.Name, d.Provider.Name, st.Date, st.Time)
		if d.Customer == (wizard.Customer{}) {
			s.printf("Seus dados: nome;email;telefone[;comentário]\n")
			break
		}
		s.printf("Cliente: %s %s %s\n[y] confirmar  [e] editar dados  [b] voltar  [q] sair\n",
			d.Customer.Name, d.Customer.Email, d.Customer.Phone)
	case wizard.Success:
		s.printf("\nAgendado! #%d às %s\nPara cancelar: bookctl cancel -id %d -manage-token %s\n[n] novo agendamento  [q] sair\n",
			st.Booking.ID, st.Booking.AppointmentStart.Format("02/01 15:04"), st.Booking.ID, st.Booking.ManageToken)
	case wizard.Aborted:
		return "", false
	}

	s.printf("> ")
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *session) apply(ctx context.Context, line string) error {
	switch line {
	case "q":
		if err := s.w.Cancel(); err != nil && !errors.Is(err, wizard.ErrInvalidTransition) {
			return err
		}
		return errQuit
	case "b":
		return s.w.Back()
	}

	switch st := s.w.State().(type) {
	case wizard.SalonInfo:
		return s.w.Continue(ctx)

	case wizard.SelectProvider:
		i, err := pick(line, len(st.Providers))
		if err != nil {
			return err
		}
		return s.w.ChooseProvider(ctx, st.Providers[i].ID)

	case wizard.SelectService:
		i, err := pick(line, len(st.Services))
		if err != nil {
			return err
		}
		return s.w.ChooseService(st.Services[i].ID)

	case wizard.SelectDateTime:
		if st.Date == "" || strings.Contains(line, "-") {
			return s.w.ChooseDate(ctx, line)
		}
		i, err := pick(line, len(st.Slots))
		if err != nil {
			return err
		}
		return s.w.ChooseTime(st.Slots[i])

	case wizard.Confirm:
		if st.Draft.Customer == (wizard.Customer{}) {
			c, comment := parseCustomer(line)
			return s.w.SetCustomer(c, comment)
		}
		switch line {
		case "y":
			return s.w.Submit(ctx)
		case "e":
			return s.w.SetCustomer(wizard.Customer{}, "")
		}

	case wizard.Success:
		if line == "n" {
			return s.w.NewBooking()
		}
	}
	return nil
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func pick(line string, n int) (int, error) {
	i, err := strconv.Atoi(line)
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("escolha um número entre 1 e %d", n)
	}
	return i - 1, nil
}

// parseCustomer reads "name;email;phone;comment". A bare number is a
// registered user id.
func parseCustomer(line string) (wizard.Customer, string) {
	if id, err := strconv.ParseUint(line, 10, 64); err == nil {
		return wizard.Customer{UserID: uint(id)}, ""
	}

	parts := strings.SplitN(line, ";", 4)
	for len(parts) < 4 {
		parts = append(parts, "")
	}
	return wizard.Customer{
		Name:  strings.TrimSpace(parts[0]),
		Email: strings.TrimSpace(parts[1]),
		Phone: strings.TrimSpace(parts[2]),
	}, strings.TrimSpace(parts[3])
}

func describe(err error) string {
	var be httperr.BusinessError
	if errors.As(err, &be) {
		return httperr.Message(be.Code)
	}
	return err.Error()
}
